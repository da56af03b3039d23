package verify

import (
	"fmt"
	"io"
	"strings"

	"commitverify/internal/models"
)

var rule = strings.Repeat("-", 98)

func successMessage(expected, url string) string {
	return fmt.Sprintf("INFO: COMMIT_ID: %s is installed and available on %s", expected, url)
}

func failureMessage(expected, actual string) string {
	return fmt.Sprintf("ERROR: COMMIT_ID: %s is not installed, current installed COMMIT_ID: %s", expected, actual)
}

// WriteReport prints the verification outcome for operators. Transport
// and response errors print a single ERROR line. A verdict is framed by
// rules and preceded by a blank line.
func WriteReport(w io.Writer, result *models.VerificationResult) error {
	var b strings.Builder

	if !result.Responded() {
		b.WriteString(result.Message)
		b.WriteString("\n")
		_, err := io.WriteString(w, b.String())
		return err
	}

	b.WriteString("\n")
	b.WriteString(rule + "\n")
	b.WriteString(result.Message + "\n")
	if !result.Success && (!result.Healthy || !result.ConnectionStatus) {
		fmt.Fprintf(&b, "ERROR: service reports healthy=%t, connection_status=%t\n", result.Healthy, result.ConnectionStatus)
	}
	b.WriteString(rule + "\n")
	b.WriteString("\n")

	_, err := io.WriteString(w, b.String())
	return err
}
