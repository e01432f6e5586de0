package logging

import (
	"bytes"
	"fmt"

	log "github.com/sirupsen/logrus"
)

// CommandLineFormatter writes bare messages for info and below, so log lines read like program output.
// Warnings and errors are prefixed with their level and followed by the error, if any.
type CommandLineFormatter struct{}

func (f *CommandLineFormatter) Format(entry *log.Entry) ([]byte, error) {
	var b bytes.Buffer
	if entry.Level <= log.WarnLevel {
		fmt.Fprintf(&b, "%s: ", entry.Level)
	}
	b.WriteString(entry.Message)
	if err, ok := entry.Data[log.ErrorKey]; ok && entry.Level <= log.WarnLevel {
		fmt.Fprintf(&b, ": %v", err)
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}
