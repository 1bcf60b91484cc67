package exc

import "strings"

// Fatal codes abort the whole request.
const (
	CodeUnknownFatal                  = "J0000"
	CodeFileNotFound                  = "J0001"
	CodeUnsuportedFileSystemOperation = "J0002"
	CodePermissionDenied              = "J0003"
	CodeUnsupportedFileFormat         = "J0004"
	CodeReadFailure                   = "J0005"
	CodeWriteFailure                  = "J0006"
)

// Lexical codes.
const (
	CodeUnexpectedCharacter = "J0010"
	CodeUnterminatedString  = "J0011"
	CodeInvalidEscape       = "J0012"
	CodeInvalidCharacter    = "J0013"
)

// Structural codes abort parsing of the unit.
const (
	CodeUnexpectedEOF   = "J0020"
	CodeUnexpectedToken = "J0021"
	CodeUnbalancedBrace = "J0022"
	CodeExpectedKeyword = "J0023"
)

// Semantic codes.
const (
	CodeUnknownInstruction  = "J0030"
	CodeOperandCount        = "J0031"
	CodeOperandKind         = "J0032"
	CodeInvalidDescriptor   = "J0033"
	CodeInvalidNumber       = "J0034"
	CodeMissingOperand      = "J0035"
	CodeDuplicateLabel      = "J0036"
	CodeUndefinedLabel      = "J0037"
	CodeUnknownModifier     = "J0038"
	CodeDuplicateMember     = "J0039"
	CodeDanglingPrefix      = "J0040"
	CodeUnknownKey          = "J0041"
	CodeInvalidValue        = "J0042"
	CodeDeclarationCount    = "J0043"
	CodeUnexpectedElement   = "J0044"
	CodeInvalidVariable     = "J0045"
	CodeBranchOutOfRange    = "J0046"
	CodeUnsupportedConstant = "J0047"
	CodeInvalidFlow         = "J0048"
)

// Configuration codes are reported before compilation starts.
const (
	CodeOverlayRequired          = "J0050"
	CodeAnnotationTargetRequired = "J0051"
	CodeCheckerRequired          = "J0052"
	CodeUnsupportedTarget        = "J0053"
	CodeInvalidAnnotationTarget  = "J0054"
	CodeInvalidConfiguration     = "J0055"
)

// Warning codes never fail a stage on their own.
const (
	CodeUnusedLabel      = "J0060"
	CodeSkippedAttribute = "J0061"
	CodeReplacedMember   = "J0062"
)

const (
	CodeEOF = "_EOF_"
)

var (
	// Codes reported through a Reporter that do not stop the reporting stage.
	defaultNonFatal = map[string]bool{
		CodeUnexpectedCharacter: true,
		CodeUnterminatedString:  true,
		CodeInvalidEscape:       true,
		CodeInvalidCharacter:    true,

		CodeUnknownInstruction:  true,
		CodeOperandCount:        true,
		CodeOperandKind:         true,
		CodeInvalidDescriptor:   true,
		CodeInvalidNumber:       true,
		CodeMissingOperand:      true,
		CodeDuplicateLabel:      true,
		CodeUndefinedLabel:      true,
		CodeUnknownModifier:     true,
		CodeDuplicateMember:     true,
		CodeDanglingPrefix:      true,
		CodeUnknownKey:          true,
		CodeInvalidValue:        true,
		CodeDeclarationCount:    true,
		CodeUnexpectedElement:   true,
		CodeInvalidVariable:     true,
		CodeBranchOutOfRange:    true,
		CodeUnsupportedConstant: true,
		CodeInvalidFlow:         true,

		CodeOverlayRequired:          true,
		CodeAnnotationTargetRequired: true,
		CodeCheckerRequired:          true,
		CodeUnsupportedTarget:        true,
		CodeInvalidAnnotationTarget:  true,
		CodeInvalidConfiguration:     true,
	}
)

// IsFatal reports whether err is an unexpected failure that should abort the
// whole request rather than be collected with other diagnostics. Errors that
// are not an Exception are always fatal.
func IsFatal(err error) bool {
	if err == nil {
		return false
	}
	e, ok := err.(Exception)
	if !ok {
		return true
	}
	code := e.Code()
	return strings.HasPrefix(code, "J000")
}
