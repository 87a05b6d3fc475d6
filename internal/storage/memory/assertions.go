package memory

import (
	"github.com/aminus007/fintrack/internal/service/account"
	"github.com/aminus007/fintrack/internal/service/budget"
	"github.com/aminus007/fintrack/internal/service/debt"
	"github.com/aminus007/fintrack/internal/service/goal"
	"github.com/aminus007/fintrack/internal/service/ledger"
	"github.com/aminus007/fintrack/internal/service/recurring"
	"github.com/aminus007/fintrack/internal/service/user"
)

// Compile-time checks that Store satisfies every service contract.
var (
	_ user.Repo        = (*Store)(nil)
	_ user.Writer      = (*Store)(nil)
	_ account.Repo     = (*Store)(nil)
	_ account.Writer   = (*Store)(nil)
	_ ledger.Repo      = (*Store)(nil)
	_ ledger.Writer    = (*Store)(nil)
	_ recurring.Repo   = (*Store)(nil)
	_ recurring.Writer = (*Store)(nil)
	_ budget.Repo      = (*Store)(nil)
	_ budget.Writer    = (*Store)(nil)
	_ goal.Repo        = (*Store)(nil)
	_ goal.Writer      = (*Store)(nil)
	_ debt.Repo        = (*Store)(nil)
	_ debt.Writer      = (*Store)(nil)
)
