package note

type createNoteDTO struct {
	Title       string `json:"title" binding:"required"`
	Text        string `json:"text"`
	IsPublished *bool  `json:"is_published"`
	Mood        string `json:"mood"`
	Weather     string `json:"weather"`
	Bookmark    *bool  `json:"bookmark"`
}

type updateNoteDTO struct {
	Title       *string `json:"title"`
	Text        *string `json:"text"`
	IsPublished *bool   `json:"is_published"`
	Mood        *string `json:"mood"`
	Weather     *string `json:"weather"`
	Bookmark    *bool   `json:"bookmark"`
}

func (dto updateNoteDTO) changes() map[string]interface{} {
	changes := map[string]interface{}{}
	if dto.Title != nil {
		changes["title"] = *dto.Title
	}
	if dto.Text != nil {
		changes["text"] = *dto.Text
	}
	if dto.IsPublished != nil {
		changes["is_published"] = *dto.IsPublished
	}
	if dto.Mood != nil {
		changes["mood"] = *dto.Mood
	}
	if dto.Weather != nil {
		changes["weather"] = *dto.Weather
	}
	if dto.Bookmark != nil {
		changes["bookmark"] = *dto.Bookmark
	}
	return changes
}
