package app

import (
	"encoding/json"

	"github.com/julianstephens/studylit/internal/models"
)

// sessionBlob adapts a StudySession to the store marshaler interface.
type sessionBlob struct {
	s *models.StudySession
}

func (b sessionBlob) Marshal() ([]byte, error) {
	return json.Marshal(b.s)
}

func (b sessionBlob) Unmarshal(data []byte) error {
	return json.Unmarshal(data, b.s)
}
