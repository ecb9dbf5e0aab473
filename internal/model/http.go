package model

import "net/http"

// HTTPStatus maps an error Kind to the status code the Coordinator service
// answers with.
func HTTPStatus(k Kind) int {
	switch k {
	case KindNotFound:
		return http.StatusNotFound
	case KindInvalidArgument:
		return http.StatusBadRequest
	case KindConflict:
		return http.StatusConflict
	case KindLockTimeout:
		return http.StatusServiceUnavailable
	case KindUnavailable:
		return http.StatusServiceUnavailable
	case KindStale:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// KindFromHTTPStatus inverts HTTPStatus for a client reconstructing a
// ClaudiaError from a Coordinator response. The 409/503 codes are
// ambiguous (Conflict/Stale and LockTimeout/Unavailable share a status),
// so this returns the coarser of the two kinds. The exact kind travels in
// the "kind" field of the Coordinator's error body; this mapping is only
// the fallback when that field is absent.
func KindFromHTTPStatus(status int) Kind {
	switch status {
	case http.StatusNotFound:
		return KindNotFound
	case http.StatusBadRequest:
		return KindInvalidArgument
	case http.StatusConflict:
		return KindConflict
	case http.StatusServiceUnavailable:
		return KindUnavailable
	default:
		return KindInternal
	}
}
