package errors

const (
	CodeConfigNotFound = "CONFIG_NOT_FOUND"
	CodeConfigInvalid  = "CONFIG_INVALID"
)

// Types ////////////////////////////////////////

type CodedError interface {
	Code() string
}

type codedError struct {
	code string
	msg  string
	err  error
}

func (e *codedError) Error() string {
	if e.err != nil {
		return e.msg + ": " + e.err.Error()
	}
	return e.msg
}

func (e *codedError) Code() string {
	return e.code
}

func (e *codedError) Unwrap() error {
	return e.err
}

// Error Creators ///////////////////////////////

// The dockgen config was not found
func ConfigNotFound(msg string) error {
	return &codedError{
		code: CodeConfigNotFound,
		msg:  msg,
	}
}

// The dockgen config was found but cannot be turned into a Dockerfile
func ConfigInvalid(msg string, err error) error {
	return &codedError{
		code: CodeConfigInvalid,
		msg:  msg,
		err:  err,
	}
}

// Helpers //////////////////////////////////////

func IsConfigNotFound(err error) bool {
	return Code(err) == CodeConfigNotFound
}

func IsConfigInvalid(err error) bool {
	return Code(err) == CodeConfigInvalid
}

// Return the error code, or the empty string
func Code(err error) string {
	var cerr CodedError
	if As(err, &cerr) {
		return cerr.Code()
	}

	return ""
}
