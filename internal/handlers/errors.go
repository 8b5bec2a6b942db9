package handlers

import (
	"errors"
	"net/http"
	"strings"

	"aitutor/internal/logger"
	"aitutor/internal/validation"
)

func respondWithError(log *logger.Logger, w http.ResponseWriter, status int, userMsg, logMsg string, err error) {
	if err != nil {
		if logMsg == "" {
			logMsg = userMsg
		}
		log.Error(logMsg, "status", status, "error", err.Error())
	}

	http.Error(w, userMsg, status)
}

// providerError is a backend failure that carries the backend's own message
type providerError interface {
	error
	ProviderMessage() string
}

// pageErrorMessage returns banner text for a profile, child or goal failure.
// Context prefixes such as "failed to create goal:" are kept; a backend error
// at the end of the chain is shown by its message only.
func pageErrorMessage(err error) string {
	var verr *validation.Error
	if errors.As(err, &verr) {
		return verr.Message
	}

	msg := err.Error()
	var perr providerError
	if errors.As(err, &perr) && perr.ProviderMessage() != "" {
		if prefix, ok := strings.CutSuffix(msg, perr.Error()); ok {
			return prefix + perr.ProviderMessage()
		}
	}
	return msg
}
