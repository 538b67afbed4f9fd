package lockout

import (
	"time"

	"github.com/Abdul-Aziz026/school-auth/internal/model"
)

// Policy decides lock and unlock transitions from the counters carried
// on the user row. All methods are pure over their arguments; the
// caller persists any mutation.
type Policy struct {
	MaxAttempts int
	Duration    time.Duration
}

// Status reports whether the account is locked at now and, if so, how
// long remains. A lockout whose window has passed reads as unlocked;
// the counters are cleaned up lazily on the next attempt.
func (p Policy) Status(u model.User, now time.Time) (locked bool, remaining time.Duration) {
	if !u.LockoutEnabled && u.LockoutEnd != nil && u.LockoutEnd.After(now) {
		return true, u.LockoutEnd.Sub(now)
	}
	return false, 0
}

// RegisterFailure counts a failed password check and locks the account
// when the failure count reaches MaxAttempts. A lockout that has
// already elapsed is cleared first, so each lockout cycle requires
// MaxAttempts fresh failures. Returns true when this failure caused the
// transition to locked.
func (p Policy) RegisterFailure(u *model.User, now time.Time) bool {
	if u.LockoutEnd != nil && !u.LockoutEnd.After(now) {
		p.clear(u)
	}

	u.FailedLoginAttempts++
	if u.FailedLoginAttempts >= p.MaxAttempts {
		end := now.Add(p.Duration)
		u.LockoutEnd = &end
		u.LockoutEnabled = false
		return true
	}
	return false
}

// RegisterSuccess resets the failure counter and clears any standing
// lockout after a successful password check.
func (p Policy) RegisterSuccess(u *model.User) {
	p.clear(u)
}

func (p Policy) clear(u *model.User) {
	u.FailedLoginAttempts = 0
	u.LockoutEnd = nil
	u.LockoutEnabled = true
}
