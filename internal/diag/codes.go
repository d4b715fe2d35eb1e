package diag

import (
	"fmt"
)

type Code uint16

const (
	UnknownCode Code = 0

	// Синтаксис (ошибки разбора фронтенда)
	SynInfo        Code = 1000
	SynError       Code = 1001
	SynMissing     Code = 1002
	SynUnsupported Code = 1003

	// Семантика; номера совпадают с кодами tsc там, где смысл тот же
	SemaInfo                  Code = 2000
	SemaUsedBeforeDeclaration Code = 2449
	SemaRedeclaredBlockScoped Code = 2451

	// Ввод/вывод
	IOInfo        Code = 4000
	IOReadFailed  Code = 4001
	IOWriteFailed Code = 4002

	// Проект и конфигурация
	PrjInfo          Code = 5000
	PrjConfigInvalid Code = 5001
	PrjDuplicateUnit Code = 5002
	PrjMissingUnit   Code = 5003
	PrjUnitCycle     Code = 5004

	// Observability
	ObsInfo    Code = 6000
	ObsTimings Code = 6001
)

var (
	codeDescription = map[Code]string{
		UnknownCode:               "Unknown error",
		SynInfo:                   "Syntax information",
		SynError:                  "Syntax error",
		SynMissing:                "Missing token",
		SynUnsupported:            "Unsupported construct",
		SemaInfo:                  "Semantic information",
		SemaUsedBeforeDeclaration: "Block-scoped binding used before its declaration",
		SemaRedeclaredBlockScoped: "Cannot redeclare block-scoped binding",
		IOInfo:                    "I/O information",
		IOReadFailed:              "Failed to read file",
		IOWriteFailed:             "Failed to write file",
		PrjInfo:                   "Project information",
		PrjConfigInvalid:          "Invalid project configuration",
		PrjDuplicateUnit:          "Duplicate unit",
		PrjMissingUnit:            "Missing unit",
		PrjUnitCycle:              "Unit dependency cycle",
		ObsInfo:                   "Observability information",
		ObsTimings:                "Pipeline timings",
	}
)

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("SYN%04d", ic)
	case ic >= 2000 && ic < 4000:
		return fmt.Sprintf("SEM%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("PRJ%04d", ic)
	case ic >= 6000 && ic < 7000:
		return fmt.Sprintf("OBS%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[UnknownCode]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
