package casjobs

import (
	"fmt"
)

// CasJobsError is an error type carrying CasJobs specific information.
type CasJobsError struct {
	Number      int
	Message     string
	MessageArgs []interface{}
	TableName   string
	JobID       int64
}

func (ce *CasJobsError) Error() string {
	message := ce.Message
	if len(ce.MessageArgs) > 0 {
		message = fmt.Sprintf(ce.Message, ce.MessageArgs...)
	}
	if ce.JobID != 0 {
		return fmt.Sprintf("%06d (job %d): %s", ce.Number, ce.JobID, message)
	}
	return fmt.Sprintf("%06d: %s", ce.Number, message)
}

const (
	// configuration

	// ErrCodeMissingIdentity is an error code for the case where neither a
	// username nor a WSID is available from parameters or the environment.
	ErrCodeMissingIdentity = 260001
	// ErrCodeMissingPassword is an error code for the case where no password
	// is available from parameters or the environment.
	ErrCodeMissingPassword = 260002
	// ErrCodeMissingWSIDURL is an error code for the case where a username
	// login is requested but no WSID resolution endpoint is configured.
	ErrCodeMissingWSIDURL = 260003
	// ErrCodeMissingFastURL is an error code for the case where FastTable is
	// called against an installation without an accelerated bulk endpoint.
	ErrCodeMissingFastURL = 260004
	// ErrCodeUsernameRequired is an error code for the case where FastTable
	// is called by a client authenticated with a bare WSID.
	ErrCodeUsernameRequired = 260005
	// ErrCodeClientConfig is an error code for a malformed casjobs.toml.
	ErrCodeClientConfig = 260006

	// authentication

	// ErrCodeAuthFailed is an error code for a rejected username/password
	// pair during WSID resolution.
	ErrCodeAuthFailed = 261001

	// retrieval

	// ErrCodeTableNotFound is an error code for the case where the structural
	// probe query or the accelerated endpoint reports a missing table.
	ErrCodeTableNotFound = 262001
	// ErrCodeOutputJobFailed is an error code for an output job that reached
	// a non-success terminal status.
	ErrCodeOutputJobFailed = 262002
	// ErrCodeTransportFailure is an error code for a non-2xx HTTP response.
	ErrCodeTransportFailure = 263001
	// ErrCodeBadResponse is an error code for a response the client could
	// not interpret.
	ErrCodeBadResponse = 263002
	// ErrCodeBadFITS is an error code for a FITS attachment that could not
	// be decoded into a table.
	ErrCodeBadFITS = 263003
)

var (
	// preformatted errors

	// ErrMissingIdentity is returned if neither a username nor a WSID is
	// supplied or present in the environment.
	ErrMissingIdentity = &CasJobsError{
		Number:  ErrCodeMissingIdentity,
		Message: "specify Username or WSID, or set CASJOBS_USERID or CASJOBS_WSID",
	}
	// ErrMissingPassword is returned if no password is supplied or present
	// in the environment.
	ErrMissingPassword = &CasJobsError{
		Number:  ErrCodeMissingPassword,
		Message: "specify Password or set CASJOBS_PW",
	}
	// ErrMissingWSIDURL is returned for username logins against CasJobs
	// installations with no configured WSID resolution endpoint.
	ErrMissingWSIDURL = &CasJobsError{
		Number:  ErrCodeMissingWSIDURL,
		Message: "specify WSIDURL for CasJobs installations not at MAST",
	}
	// ErrMissingFastURL is returned by FastTable when no accelerated bulk
	// endpoint is configured.
	ErrMissingFastURL = &CasJobsError{
		Number:  ErrCodeMissingFastURL,
		Message: "FastTable is only available for MAST CasJobs",
	}
	// ErrUsernameRequired is returned by FastTable when the client was
	// constructed with a bare WSID instead of a username.
	ErrUsernameRequired = &CasJobsError{
		Number:  ErrCodeUsernameRequired,
		Message: "cannot use FastTable unless Username was specified",
	}
	// ErrAuthFailed is returned when the WSID service rejects the supplied
	// username/password pair.
	ErrAuthFailed = &CasJobsError{
		Number:  ErrCodeAuthFailed,
		Message: "incorrect CasJobs username/password",
	}
)

func tableNotFoundError(table string) *CasJobsError {
	return &CasJobsError{
		Number:      ErrCodeTableNotFound,
		Message:     "table MyDB.%v not found",
		MessageArgs: []interface{}{table},
		TableName:   table,
	}
}

func transportError(status int, url string) *CasJobsError {
	return &CasJobsError{
		Number:      ErrCodeTransportFailure,
		Message:     "HTTP status %v from %v",
		MessageArgs: []interface{}{status, url},
	}
}
