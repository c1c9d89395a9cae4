package process

import (
	"encoding/json"
	"errors"

	"ewintr.nl/ytinsight/fetcher"
)

const (
	genericTitle   = "Error"
	genericMessage = "An unknown error occurred."
)

// Describe turns a failure into the title and message shown to the user.
// Error text holding a JSON {error, message} payload is shown as is;
// anything else is shown raw under a generic title.
func Describe(err error) (string, string) {
	if err == nil {
		return genericTitle, genericMessage
	}

	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if jerr := json.Unmarshal([]byte(err.Error()), &payload); jerr == nil {
		title, message := genericTitle, genericMessage
		if payload.Error != "" {
			title = payload.Error
		}
		if payload.Message != "" {
			message = payload.Message
		}
		return title, message
	}

	var fe *fetcher.Error
	if errors.As(err, &fe) {
		return fe.Title, fe.Message()
	}

	return genericTitle, err.Error()
}
