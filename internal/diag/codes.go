package diag

import (
	"fmt"
)

type Code uint16

const (
	// Неизвестная ошибка - на первое время
	UnknownCode Code = 0

	// Окружение: контекст, окно, загрузчик расширений
	EnvInfo        Code = 1000
	EnvInitFailed  Code = 1001
	EnvWindow      Code = 1002
	EnvExtensions  Code = 1003
	EnvLimitsQuery Code = 1004

	// I/O: загрузка исходников шейдеров
	IOInfo            Code = 2000
	IOVertexMissing   Code = 2001
	IOFragmentMissing Code = 2002
	IOEmptySource     Code = 2003

	// Компиляция шейдерного модуля
	CompileInfo       Code = 3000
	CompileFailed     Code = 3001
	CompileWarning    Code = 3002
	CompileUnitCreate Code = 3003
	CompileLogLine    Code = 3004

	// Линковка программы
	LinkInfo          Code = 4000
	LinkFailed        Code = 4001
	LinkWarning       Code = 4002
	LinkProgramCreate Code = 4003
	LinkLogLine       Code = 4004

	// Ошибки драйвера (неожиданный error flag после успешного вызова)
	DriverInfo  Code = 5000
	DriverFault Code = 5001
)

var codeDescription = map[Code]string{
	UnknownCode:    "Unknown error",
	EnvInfo:        "Environment information",
	EnvInitFailed:  "Display system init failed",
	EnvWindow:      "Window creation failed",
	EnvExtensions:  "Extension loader failed",
	EnvLimitsQuery: "Context limits query failed",

	IOInfo:            "I/O information",
	IOVertexMissing:   "Vertex source missing or unreadable",
	IOFragmentMissing: "Fragment source missing or unreadable",
	IOEmptySource:     "Shader source is empty",

	CompileInfo:       "Compile information",
	CompileFailed:     "Shader compilation failed",
	CompileWarning:    "Shader compilation warning",
	CompileUnitCreate: "Shader object creation failed",
	CompileLogLine:    "Compiler log output",

	LinkInfo:          "Link information",
	LinkFailed:        "Program link failed",
	LinkWarning:       "Program link warning",
	LinkProgramCreate: "Program object creation failed",
	LinkLogLine:       "Linker log output",

	DriverInfo:  "Driver information",
	DriverFault: "Unexpected driver error flag",
}

func (c Code) ID() string {
	switch ic := int(c); {
	case ic >= 1000 && ic < 2000:
		return fmt.Sprintf("ENV%04d", ic)
	case ic >= 2000 && ic < 3000:
		return fmt.Sprintf("IO%04d", ic)
	case ic >= 3000 && ic < 4000:
		return fmt.Sprintf("CMP%04d", ic)
	case ic >= 4000 && ic < 5000:
		return fmt.Sprintf("LNK%04d", ic)
	case ic >= 5000 && ic < 6000:
		return fmt.Sprintf("DRV%04d", ic)
	}
	return "E0000"
}

func (c Code) Title() string {
	desc, ok := codeDescription[c]
	if !ok {
		return codeDescription[Code(0)]
	}
	return desc
}

func (c Code) String() string {
	return fmt.Sprintf("[%s]: %s", c.ID(), c.Title())
}
