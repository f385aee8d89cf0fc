// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Rasul Khiriev

// Package validators checks the requests the relay server accepts: account
// credentials and the structure of the records of a sync request. The relay
// cannot read titles or addresses, so only identities and tree links are
// validated.
package validators

import "context"

// Validator validates v. Naming fields restricts the check to them.
type Validator interface {
	Validate(ctx context.Context, v any, fields ...string) error
}
