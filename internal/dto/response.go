package dto

import "time"

const (
	STATUS_201         = "201"
	MESSAGE_201        = "Card created successfully"
	STATUS_200         = "200"
	MESSAGE_200        = "Request processed successfully"
	STATUS_417         = "417"
	MESSAGE_417_UPDATE = "Update failed. Please try again or contact Dev team"
	MESSAGE_417_DELETE = "Delete failed. Please try again or contact Dev team"
)

type ResponseDto struct {
	StatusCode    string `json:"statusCode"`
	StatusMessage string `json:"statusMessage"`
}

type ErrorResponseDto struct {
	ApiPath      string    `json:"apiPath"`
	ErrorCode    int       `json:"errorCode"`
	ErrorMessage string    `json:"errorMessage"`
	ErrorTime    time.Time `json:"errorTime"`
}

func NewResponse(statusCode, statusMessage string) ResponseDto {
	return ResponseDto{StatusCode: statusCode, StatusMessage: statusMessage}
}
