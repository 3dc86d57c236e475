package awscost

import (
	"context"
	"fmt"
	"os"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/sts"
	"github.com/aws/smithy-go/middleware"
	smithyhttp "github.com/aws/smithy-go/transport/http"

	"github.com/DrSkyle/costscope/pkg/version"
)

// Identity is the resolved caller identity for the configured account.
type Identity struct {
	Account string
	ARN     string
}

// LoadSession resolves default AWS credentials and verifies them with
// STS before any Cost Explorer call is attempted. Returns the config
// and the caller identity for logging.
func LoadSession(ctx context.Context, region string) (aws.Config, Identity, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if region != "" {
		opts = append(opts, awsconfig.WithRegion(region))
	}

	// Local endpoint override, used for mocking/testing.
	if endpoint := os.Getenv("AWS_ENDPOINT_URL"); endpoint != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(endpoint))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return aws.Config{}, Identity{}, fmt.Errorf("failed to load aws config: %w", err)
	}

	// Tag every SDK request so account admins can attribute the
	// Cost Explorer traffic (CE calls are billed per request).
	cfg.APIOptions = append(cfg.APIOptions, func(stack *middleware.Stack) error {
		return stack.Build.Add(middleware.BuildMiddlewareFunc("CostScopeUserAgent", func(ctx context.Context, input middleware.BuildInput, next middleware.BuildHandler) (
			middleware.BuildOutput, middleware.Metadata, error,
		) {
			if req, ok := input.Request.(*smithyhttp.Request); ok {
				ua := req.Header.Get("User-Agent")
				if ua == "" {
					ua = version.AppName + "/" + version.Current
				}
				req.Header.Set("User-Agent", fmt.Sprintf("%s (%s/%s)", ua, version.AppName, version.Current))
			}
			return next.HandleBuild(ctx, input)
		}), middleware.After)
	})

	out, err := sts.NewFromConfig(cfg).GetCallerIdentity(ctx, &sts.GetCallerIdentityInput{})
	if err != nil {
		return aws.Config{}, Identity{}, fmt.Errorf("credential check failed: %w", err)
	}

	id := Identity{
		Account: aws.ToString(out.Account),
		ARN:     aws.ToString(out.Arn),
	}
	return cfg, id, nil
}
