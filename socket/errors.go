package socket

import (
	"errors"

	"hostelswap_server/utils"
)

type errUnauthorized string

func (e errUnauthorized) Error() string { return string(e) }

// clientMessage hides internal failures from socket clients
func clientMessage(err error) string {
	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Internal server error"
}
