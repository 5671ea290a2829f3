package types

import (
	"fmt"
	"strings"
	"sync"

	"github.com/oklog/ulid/v2"
	"github.com/teris-io/shortid"
)

// GenerateUUID returns a k-sortable unique identifier
func GenerateUUID() string {
	return ulid.Make().String()
}

// GenerateUUIDWithPrefix returns a k-sortable unique identifier
// with a prefix ex audit_01HZX3Q6Y0V8ZQ4N0R8Y7J5K2M
func GenerateUUIDWithPrefix(prefix string) string {
	if prefix == "" {
		return GenerateUUID()
	}
	return fmt.Sprintf("%s_%s", prefix, GenerateUUID())
}

var (
	sidGenerator *shortid.Shortid
	once         sync.Once
)

func initializeSID() {
	var err error
	sidGenerator, err = shortid.New(1, shortid.DefaultABC, 2342)
	if err != nil {
		panic("failed to initialize shortid generator: " + err.Error())
	}
}

// GenerateShortIDWithPrefix returns an upper case short code with a prefix,
// used for human facing order codes ex PRO-4XK2M9QA
func GenerateShortIDWithPrefix(prefix string) string {
	once.Do(initializeSID)

	id, err := sidGenerator.Generate()
	if err != nil {
		return GenerateUUIDWithPrefix(strings.TrimSuffix(prefix, "-"))
	}
	id = strings.ReplaceAll(id, "-", "")
	id = strings.ReplaceAll(id, "_", "")

	return prefix + strings.ToUpper(id)
}

const (
	UUID_PREFIX_AUDIT_ENTRY    = "audit"
	UUID_PREFIX_PENDING_CREDIT = "credit"
	UUID_PREFIX_ORDER          = "ord"
	UUID_PREFIX_EVENT          = "evt"
	UUID_PREFIX_DOCUMENT       = "doc"

	SHORT_ID_PREFIX_PRORATION_ORDER = "PRO-"
)
