package shippo

import "encoding/json"

// shipmentResponse is the subset of GET /shipments/{id} the relay reads
type shipmentResponse struct {
	ObjectID  string          `json:"object_id" validate:"required"`
	Status    string          `json:"status"`
	AddressTo json.RawMessage `json:"address_to"`
	Rates     []rateResponse  `json:"rates" validate:"dive"`
}

// addressResponse is an expanded address object
type addressResponse struct {
	Name    string `json:"name"`
	Company string `json:"company"`
}

type rateResponse struct {
	ObjectID      string               `json:"object_id" validate:"required"`
	Shipment      string               `json:"shipment"`
	Provider      string               `json:"provider" validate:"required"`
	ServiceLevel  serviceLevelResponse `json:"servicelevel"`
	Amount        string               `json:"amount" validate:"required,numeric"`
	Currency      string               `json:"currency" validate:"omitempty,len=3"`
	EstimatedDays *int                 `json:"estimated_days" validate:"omitempty,min=0"`
}

type serviceLevelResponse struct {
	Name  string `json:"name"`
	Token string `json:"token"`
}

// transactionRequest is the body of POST /transactions
type transactionRequest struct {
	Rate          string `json:"rate"`
	LabelFileType string `json:"label_file_type"`
	Async         bool   `json:"async"`
}

type transactionResponse struct {
	ObjectID       string            `json:"object_id" validate:"required"`
	Status         string            `json:"status" validate:"required"`
	Rate           string            `json:"rate"`
	TrackingNumber string            `json:"tracking_number"`
	TrackingURL    string            `json:"tracking_url_provider"`
	LabelURL       string            `json:"label_url" validate:"omitempty,url"`
	Messages       []responseMessage `json:"messages"`
}

type responseMessage struct {
	Source string `json:"source"`
	Code   string `json:"code"`
	Text   string `json:"text"`
}

// errorResponse covers the error bodies the provider returns on 4xx
type errorResponse struct {
	Detail string `json:"detail"`
}
