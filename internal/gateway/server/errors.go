package server

import (
	"net/http"

	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// httpStatus translates an authority error into an HTTP status and message.
func httpStatus(err error) (int, string) {
	st := status.Convert(err)
	switch st.Code() {
	case codes.InvalidArgument:
		return http.StatusBadRequest, st.Message()
	case codes.AlreadyExists:
		return http.StatusConflict, "username is already taken"
	case codes.Unauthenticated:
		return http.StatusUnauthorized, st.Message()
	case codes.Unavailable, codes.DeadlineExceeded:
		return http.StatusServiceUnavailable, "authority unavailable"
	default:
		return http.StatusInternalServerError, "internal error"
	}
}
