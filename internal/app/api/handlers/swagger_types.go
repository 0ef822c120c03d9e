package handlers

import (
	"github.com/fatflowers/sitecraft/internal/app/service/statistics"
	models "github.com/fatflowers/sitecraft/internal/models"
	"github.com/fatflowers/sitecraft/pkg/response"
)

// RespOK is a generic OK envelope for endpoints returning no specific data.
type RespOK struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    interface{}              `json:"data"`
}

type RespHealth struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    map[string]string        `json:"data"`
}

type RespCreateSubmission struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    CreateSubmissionResponse `json:"data"`
}

type RespLogin struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    LoginResponse            `json:"data"`
}

// RespListSubmissions wraps ListSubmissionsResponse in the standard envelope.
type RespListSubmissions struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    ListSubmissionsResponse  `json:"data"`
}

type RespSubmission struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    SubmissionItem           `json:"data"`
}

type RespNote struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.SubmissionNote    `json:"data"`
}

type RespNotes struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.SubmissionNote  `json:"data"`
}

type RespPaymentLinks struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    PaymentLinksResponse     `json:"data"`
}

type RespFile struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    models.SubmissionFile    `json:"data"`
}

type RespFiles struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    []models.SubmissionFile  `json:"data"`
}

type RespFileURL struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    FileURLResponse          `json:"data"`
}

// RespStatistics wraps statistics.Response in the standard envelope.
type RespStatistics struct {
	Code    response.APIResponseCode `json:"code"`
	Message string                   `json:"message"`
	Data    statistics.Response      `json:"data"`
}

type RespWebhookEvents struct {
	Code    response.APIResponseCode  `json:"code"`
	Message string                    `json:"message"`
	Data    []*models.WebhookEventLog `json:"data"`
}
