package services

import (
	"fmt"
	"strconv"
	"time"

	"wms-audit/repositories"
)

const (
	auditCodePrefix = "AUD"
	// auditCodeMaxSeq keeps the sequence at four digits so codes of one day sort
	// as strings.
	auditCodeMaxSeq = 9999
)

// NextAuditCode returns AUD<yyyymmdd><seq>, the sequence restarting at 0001 every day.
func NextAuditCode(repo *repositories.AuditSessionRepository, now time.Time) (string, error) {
	prefix := auditCodePrefix + now.Format("20060102")

	lastCode, err := repo.LastCodeWithPrefix(prefix)
	if err != nil {
		return "", err
	}

	seq := 1
	if lastCode != "" {
		lastSeq, err := strconv.Atoi(lastCode[len(prefix):])
		if err != nil {
			return "", fmt.Errorf("malformed audit code %q: %w", lastCode, err)
		}
		seq = lastSeq + 1
	}
	if seq > auditCodeMaxSeq {
		return "", newError(KindConflict, "all %d audit codes for %s are in use", auditCodeMaxSeq, now.Format("2006-01-02"))
	}

	return fmt.Sprintf("%s%04d", prefix, seq), nil
}
