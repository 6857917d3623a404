package builder

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

type Env map[string]string

func Environment() Env {
	toolPath, err := os.Executable()
	if err != nil {
		panic(err)
	}

	// The default root is one directory up from the tool itself
	root, err := filepath.Abs(filepath.Dir(toolPath) + "/..")
	if err != nil {
		panic(err)
	}

	// Return the environment
	return map[string]string{
		"BRINGUPROOT": getenv("BRINGUPROOT", root),

		"LD":      getenv("LD", ""),
		"GDB":     getenv("GDB", ""),
		"OBJCOPY": getenv("OBJCOPY", ""),
		"OPENOCD": getenv("OPENOCD", ""),
	}
}

func (e Env) Print() {
	for _, entry := range e.List() {
		fmt.Println(entry)
	}
}

func (e Env) Value(key string) string {
	if v, ok := e[key]; ok {
		return v
	}
	return ""
}

func (e Env) List() []string {
	var result []string
	for key, value := range e {
		result = append(result, fmt.Sprintf("%s=%s", key, value))
	}
	sort.Strings(result)
	return result
}

func getenv(key, _default string) (value string) {
	value = os.Getenv(key)
	if len(value) == 0 {
		value = _default
	}
	return value
}
