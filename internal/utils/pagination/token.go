package pagination

import (
	"encoding/base64"
	"fmt"
	"strconv"
	"strings"
	"time"
)

const dateFormat = "2006-01-02"

// EncodeToken creates a base64 encoded cursor from the transaction date and source line
// number of the last row on a page.
func EncodeToken(transactionDate time.Time, lineNumber int) string {
	tokenStr := fmt.Sprintf("%s|%d", transactionDate.Format(dateFormat), lineNumber)
	return base64.URLEncoding.EncodeToString([]byte(tokenStr))
}

// DecodeToken parses the base64 encoded cursor back into transaction date and line number.
func DecodeToken(token string) (time.Time, int, error) {
	decodedBytes, err := base64.URLEncoding.DecodeString(token)
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid pagination token format (base64 decode): %w", err)
	}
	parts := strings.SplitN(string(decodedBytes), "|", 2)
	if len(parts) != 2 {
		return time.Time{}, 0, fmt.Errorf("invalid pagination token format (split)")
	}

	transactionDate, err := time.Parse(dateFormat, parts[0])
	if err != nil {
		return time.Time{}, 0, fmt.Errorf("invalid pagination token format (date parse): %w", err)
	}

	lineNumber, err := strconv.Atoi(parts[1])
	if err != nil || lineNumber < 0 {
		return time.Time{}, 0, fmt.Errorf("invalid pagination token format (line number parse)")
	}

	return transactionDate, lineNumber, nil
}
