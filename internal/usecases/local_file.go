package usecases

import "os"

func readLocalFile(path string) ([]byte, error) {
	return os.ReadFile(path)
}
