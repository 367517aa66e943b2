package domain

import "path/filepath"

// RenderedVideoPath is where the rendering engine leaves the scene clip,
// relative to the scene's media directory. 480p15 tracks the render quality
// flag; change both together.
const RenderedVideoPath = "videos/video/480p15/video.mp4"

// Layout derives every per-run file path from the generations root and the
// video id. Each scene owns an exclusive directory under the video directory;
// no two scenes ever share one.
type Layout struct {
	Root    string
	VideoID string
}

func NewLayout(root, videoID string) Layout {
	return Layout{Root: root, VideoID: videoID}
}

func (l Layout) VideoDir() string {
	return filepath.Join(l.Root, l.VideoID)
}

func (l Layout) SceneDir(sceneID string) string {
	return filepath.Join(l.Root, l.VideoID, sceneID)
}

func (l Layout) CodePath(sceneID string) string {
	return filepath.Join(l.SceneDir(sceneID), "video.py")
}

func (l Layout) ScenePath(sceneID string) string {
	return filepath.Join(l.SceneDir(sceneID), filepath.FromSlash(RenderedVideoPath))
}

func (l Layout) AudioPath(sceneID string) string {
	return filepath.Join(l.SceneDir(sceneID), "audio.wav")
}

func (l Layout) FinalPath() string {
	return filepath.Join(l.VideoDir(), "final_video.mp4")
}
