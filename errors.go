package library

// UserError is an error that includes a message suitable for the user
//
// a UserError that reaches the HTTP handlers is rendered as-is to the client
type UserError interface {
	error
	Public() bool
	UserError() string
}

// ErrMissingFile is returned when an upload has no file contents
var ErrMissingFile = createIE("no file was uploaded")

// ErrFileTooLarge is returned when an upload exceeds the configured size limit
var ErrFileTooLarge = createIE("the uploaded file is too large")

// ErrUnsupportedType is returned when an upload is not an audio file
var ErrUnsupportedType = createIE("the uploaded file is not an audio file")

// ErrMissingMetadata is returned when no title or artist could be resolved
var ErrMissingMetadata = createIE("could not determine a title and artist for this song")

func createIE(s string) IngestError {
	return IngestError{UserMessage: s}
}

// IngestError is returned when an upload was rejected before anything was
// stored
type IngestError struct {
	// UserMessage is a message suitable for outside users, describing why the upload
	// was rejected
	UserMessage string
}

func (err IngestError) Error() string {
	return err.UserMessage
}

// Public implements UserError
func (err IngestError) Public() bool {
	return true
}

// UserError implements UserError
func (err IngestError) UserError() string {
	return err.UserMessage
}
