package domain

import "github.com/google/uuid"

type RenderStatus string

const (
	StatusPending   RenderStatus = "pending"
	StatusSucceeded RenderStatus = "succeeded"
	StatusFailed    RenderStatus = "failed"
)

const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Scene is one narrated segment of the final video. Code, Conversation and the
// status fields are owned by the generation loop; SpeechStatus by the speech
// generator. Everything else is immutable after creation.
type Scene struct {
	ID            string
	Transcription string
	Conversation  []ChatMessage
	Code          string
	Attempts      int
	RenderStatus  RenderStatus
	SpeechStatus  RenderStatus
}

func (s *Scene) Playable() bool {
	return s.RenderStatus == StatusSucceeded && s.SpeechStatus == StatusSucceeded
}

type Video struct {
	ID         string
	SceneOrder []string
	Scenes     map[string]*Scene
	FinalPath  string
}

// NewVideo creates a video run with one scene per transcription. Scene ids are
// unique even for identical transcription texts, and SceneOrder preserves the
// input order for final assembly.
func NewVideo(transcriptions []string) *Video {
	video := &Video{
		ID:         uuid.NewString(),
		SceneOrder: make([]string, 0, len(transcriptions)),
		Scenes:     make(map[string]*Scene, len(transcriptions)),
	}
	for _, transcription := range transcriptions {
		scene := &Scene{
			ID:            uuid.NewString(),
			Transcription: transcription,
			RenderStatus:  StatusPending,
			SpeechStatus:  StatusPending,
		}
		video.SceneOrder = append(video.SceneOrder, scene.ID)
		video.Scenes[scene.ID] = scene
	}
	return video
}

const (
	StageGeneration = "generation"
	StageSynthesis  = "synthesis"
	StageReconcile  = "reconcile"
	StageAssembly   = "assembly"
)

type SceneEvent struct {
	VideoID string       `json:"video_id"`
	SceneID string       `json:"scene_id,omitempty"`
	Stage   string       `json:"stage"`
	Status  RenderStatus `json:"status"`
	Message string       `json:"message,omitempty"`
}

// SceneRecord is the persisted outcome of one scene's run.
type SceneRecord struct {
	VideoID  string
	SceneID  string
	Status   RenderStatus
	Attempts int
	Duration float64
}
