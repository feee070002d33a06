package cli

import (
	"context"
	"time"

	"github.com/julianstephens/studylit/internal/constants"
)

type PremiumCmd struct {
	On     PremiumOnCmd     `cmd:"" help:"Unlock weekly and monthly goals."`
	Off    PremiumOffCmd    `cmd:"" help:"Turn premium off."`
	Status PremiumStatusCmd `cmd:"" help:"Show premium status." default:"1"`
}

type PremiumOnCmd struct {
	Days int `help:"Expire after this many days (0 never expires)." default:"0"`
}

func (cmd *PremiumOnCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	var expiresAt *time.Time
	if cmd.Days > 0 {
		t := ctx.clock().Now().AddDate(0, 0, cmd.Days)
		expiresAt = &t
	}
	a.SetPremium(context.Background(), true, expiresAt)
	if expiresAt != nil {
		ctx.printf("✓ Premium on until %s\n", expiresAt.Format(constants.DateFormat+" "+constants.TimeFormat))
	} else {
		ctx.println("✓ Premium on")
	}
	return nil
}

type PremiumOffCmd struct{}

func (cmd *PremiumOffCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	a.SetPremium(context.Background(), false, nil)
	ctx.println("✓ Premium off")
	return nil
}

type PremiumStatusCmd struct{}

func (cmd *PremiumStatusCmd) Run(ctx *Context) error {
	a, err := ctx.App()
	if err != nil {
		return err
	}
	st := a.Gate.State()
	switch {
	case !st.Premium:
		ctx.println("Premium: off (daily goals only)")
	case st.ExpiresAt != nil:
		ctx.printf("Premium: on until %s\n", st.ExpiresAt.Format(constants.DateFormat+" "+constants.TimeFormat))
	default:
		ctx.println("Premium: on")
	}
	return nil
}
