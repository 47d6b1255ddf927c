package dto

import (
	"time"

	"github.com/geosearch-service/internal/domain"
)

// StatusMessage - одно статусное сообщение для отображения
type StatusMessage struct {
	Message string    `json:"message"`
	At      time.Time `json:"at"`
}

// StatusResponse - текущее состояние контроллера геолокации и последние
// статусные сообщения
type StatusResponse struct {
	State    string              `json:"state"`
	Message  string              `json:"message,omitempty"`
	Position *domain.GeoPosition `json:"position,omitempty"`
	Busy     bool                `json:"busy"`
	History  []StatusMessage     `json:"history,omitempty"`
}

// SearchAcceptedResponse - подтверждение принятого поискового намерения
type SearchAcceptedResponse struct {
	Accepted bool `json:"accepted"`
}
