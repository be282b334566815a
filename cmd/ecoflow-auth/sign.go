package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/EcoFlowJS/ecoflow-authentication/config"
	"github.com/EcoFlowJS/ecoflow-authentication/keys"
	"github.com/EcoFlowJS/ecoflow-authentication/token"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type signOptions struct {
	algorithm string
	secret    string
	fromEnv   bool
	payload   string
	expiresIn string
}

func newSignCommand() *cobra.Command {
	var opts signOptions

	cmd := &cobra.Command{
		Use:   "sign",
		Short: "Sign a JSON payload and print the token",
		Long: `Sign a JSON payload with the same key handling as the jwtSign step.

For RS256 and RS384 --secret is a private key file. When the file does not
exist the token is signed with ` + config.TokenSaltEnv + ` using HS256 or HS384.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			signed, err := sign(opts, zap.NewNop())
			if err != nil {
				return err
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), signed)
			return err
		},
	}

	cmd.Flags().StringVarP(&opts.algorithm, "algorithm", "a", keys.HS256.String(), "signing algorithm")
	cmd.Flags().StringVarP(&opts.secret, "secret", "s", "", "shared secret or private key file")
	cmd.Flags().BoolVar(&opts.fromEnv, "secret-from-env", false, "read --secret as an environment variable name")
	cmd.Flags().StringVarP(&opts.payload, "payload", "d", "{}", "JSON object to sign")
	cmd.Flags().StringVarP(&opts.expiresIn, "expires-in", "e", "", "token lifetime, e.g. 3600s, 1hr or 7d (no unit means milliseconds)")
	return cmd
}

func sign(opts signOptions, logger *zap.Logger) (string, error) {
	alg, err := keys.ParseAlgorithm(opts.algorithm)
	if err != nil {
		return "", err
	}

	expiresIn, err := token.ParseExpiry(opts.expiresIn)
	if err != nil {
		return "", err
	}

	var claims map[string]any
	if err := json.Unmarshal([]byte(opts.payload), &claims); err != nil {
		return "", fmt.Errorf("payload must be a JSON object: %w", err)
	}

	resolver := keys.NewResolver(os.Getenv(config.TokenSaltEnv), logger)
	material, err := resolver.Resolve(alg, keys.FromInput(opts.secret, opts.fromEnv))
	if err != nil {
		return "", err
	}

	return token.NewSigner().Sign(claims, material, expiresIn)
}
