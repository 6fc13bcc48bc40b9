package token

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/youta-t/flarc"

	"github.com/Tarigseedahmed/aquafarm-pro-sub003/cmd/aquasync/subcommands/common"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/auth"
	"github.com/Tarigseedahmed/aquafarm-pro-sub003/pkg/tenant"
)

const EnvSecret = "AQUAFARM_TOKEN_SECRET"

type Flag struct {
	Kid     string `flag:"kid" help:"key id of the secret, as configured in aquafarmd"`
	Secret  string `flag:"secret" help:"HS256 secret. Default: $AQUAFARM_TOKEN_SECRET"`
	Subject string `flag:"subject" help:"subject of the token"`
	TTL     string `flag:"ttl" help:"lifetime of the token, like 24h"`
	Tenant  string `flag:"tenant" help:"tenant of the token. Default: tenantId of the profile"`
	Save    bool   `flag:"save" help:"write the token into the profile instead of stdout"`
}

func New() (flarc.Command, error) {
	return flarc.NewCommand(
		"Issue a development token for aquafarmd.",
		Flag{Kid: "dev", Secret: os.Getenv(EnvSecret), Subject: "aquasync", TTL: "24h"},
		flarc.Args{},
		common.NewProfileTask(Task(time.Now)),
		flarc.WithDescription(`
Issue a development token, signed by a secret shared with aquafarmd.

This is for development and testing. Use tokens issued by your identity provider in production.
`),
	)
}

func Task(now func() time.Time) common.ProfileTask[Flag] {
	return func(_ context.Context, env common.Env, cl flarc.Commandline[Flag], _ []any) error {
		flags := cl.Flags()
		if flags.Secret == "" {
			return fmt.Errorf("%w: --secret or $%s is required", flarc.ErrUsage, EnvSecret)
		}
		ttl, err := time.ParseDuration(flags.TTL)
		if err != nil || ttl <= 0 {
			return fmt.Errorf("%w: --ttl should be a positive duration: %q", flarc.ErrUsage, flags.TTL)
		}
		t := env.Profile.Tenant()
		if flags.Tenant != "" {
			if t, err = tenant.Parse(flags.Tenant); err != nil {
				return fmt.Errorf("%w: --tenant: %w", flarc.ErrUsage, err)
			}
		}

		issued := now()
		kr := auth.NewKeyring(map[string]auth.Key{flags.Kid: {Secret: []byte(flags.Secret)}})
		tok, err := kr.Sign(flags.Kid, &auth.Claims{
			RegisteredClaims: jwt.RegisteredClaims{
				Subject:   flags.Subject,
				IssuedAt:  jwt.NewNumericDate(issued),
				ExpiresAt: jwt.NewNumericDate(issued.Add(ttl)),
			},
			TenantId: t.String(),
		})
		if err != nil {
			return err
		}

		if !flags.Save {
			_, err := io.WriteString(cl.Stdout(), tok+"\n")
			return err
		}
		env.Profile.Token = tok
		if err := env.Store.Save(env.StorePath); err != nil {
			return err
		}
		env.Logger.Info("token is saved into the profile")
		return nil
	}
}
