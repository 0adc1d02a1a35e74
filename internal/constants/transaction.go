package constants

const (
	// Date Layout
	DateFormat = "2006-01-02"

	DefaultTransferNote = "Money Transfer"
	CancelledByUser     = "Cancelled by user"

	// Standing instruction transfers are keyed SI:<instructionId>:<nextExecutionDate>
	InstructionKeyPrefix = "SI"
)

const (
	MinorUnitsPerMajor = 100
	MoneyScale         = 2
)

const (
	ExpiringSoonDays      = 30
	DefaultStatementLimit = 50
	MaxNameLen            = 100
)
