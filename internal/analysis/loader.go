package analysis

import "os"

func defaultLoader(path string) ([]byte, error) {
	return os.ReadFile(path)
}
