package dto

type CreateVideoRequest struct {
	Transcriptions []string `json:"transcriptions" binding:"required,min=1,dive,required"`
}

type CreateVideoResponse struct {
	VideoID string `json:"video_id"`
}
