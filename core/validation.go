// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


package core

import (
	"fmt"
	"time"
)

// ValidateTitle validates a Title according to domain rules.
//
// Validation rules:
//   - Text must not be empty after trimming
//   - Status must be Approved or Rejected
//   - CreatedAt must not be in the future
//
// NOT validated:
//   - ID (0 is valid from database sequences)
func ValidateTitle(title *Title) error {
	if title == nil {
		return fmt.Errorf("%w: title is nil", ErrInvalidTitle)
	}

	if NormalizeKey(title.Text) == "" {
		return fmt.Errorf("%w: %w", ErrInvalidTitle, ErrEmptyTitleText)
	}

	if err := ValidateStatus(title.Status); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidTitle, err)
	}

	if !IsValidTimestamp(title.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidTitle, ErrInvalidTimestamp)
	}

	return nil
}

// ValidateStatus checks that a TitleStatus is a recognized value.
func ValidateStatus(status TitleStatus) error {
	switch status {
	case StatusApproved, StatusRejected:
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrInvalidStatus, string(status))
	}
}

// IsValidTimestamp reports whether a timestamp is not in the future.
// A small tolerance absorbs clock skew between writers.
func IsValidTimestamp(t time.Time) bool {
	return !t.After(time.Now().Add(time.Minute))
}
