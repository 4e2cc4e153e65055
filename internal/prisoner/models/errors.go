package models

import (
	"fmt"

	"prisonersearch/pkg/platform/sentinel"
)

// ErrPrisonerNotFound means the source of record has no such prisoner. A
// not-found from an enrichment source does not match it.
var ErrPrisonerNotFound = fmt.Errorf("prisoner not found in source of record: %w", sentinel.ErrNotFound)
