package status

// ErrorCode is a numeric code to classify API errors in a stable way
type ErrorCode int

// Reserved ranges by domain:
//   0-999: Report request/validation errors
//   1000-1999: Report generation failures
//   9000: unclassified

const (
	BadRequestBase    ErrorCode = 0
	InternalErrorBase ErrorCode = 1000
)

// Report client/validation errors start at *000
const (
	ReportInvalidRequestBody ErrorCode = BadRequestBase + iota // 0
	ReportMissingParams                                        // 1
	ReportUnsupportedFile                                      // 2
	ReportFileTooLarge                                         // 3
	ReportInvalidID                                            // 4
	ReportNotFound                                             // 5
	ReportEmptyDocument                                        // 6
)

// Report internal errors start at 1000. Extraction and model failures are kept
// apart so operators know which collaborator to look at.
const (
	ReportInternal         ErrorCode = InternalErrorBase + iota // 1000
	ReportExtractionFailed                                      // 1001
	ReportModelFailed                                           // 1002
	ReportStorageFailed                                         // 1003
	ReportCancelled                                             // 1004
	ReportUploadFailed                                          // 1005
)

const (
	ErrorCodeInternal ErrorCode = 9000
)

// SuccessCode mirrors the HTTP status of a successful response in the envelope.
type SuccessCode int

const (
	OK SuccessCode = 200
)
