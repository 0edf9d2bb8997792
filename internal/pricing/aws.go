package pricing

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awspricing "github.com/aws/aws-sdk-go-v2/service/pricing"
	pricingtypes "github.com/aws/aws-sdk-go-v2/service/pricing/types"
)

// The Price List API is only served from a few regions.
const awsPricingRegion = "us-east-1"

// PricingAPI defines the subset of the AWS Price List API used by the fetcher.
type PricingAPI interface {
	GetProducts(ctx context.Context, input *awspricing.GetProductsInput, opts ...func(*awspricing.Options)) (*awspricing.GetProductsOutput, error)
}

// AWSClient wraps the AWS SDK configuration for creating pricing clients.
type AWSClient struct {
	cfg aws.Config
}

// NewAWSClient loads AWS configuration for the given profile with the region
// pinned to the Price List endpoint.
func NewAWSClient(ctx context.Context, profile string) (*AWSClient, error) {
	opts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(awsPricingRegion),
	}
	if profile != "" {
		opts = append(opts, awsconfig.WithSharedConfigProfile(profile))
	}

	cfg, err := awsconfig.LoadDefaultConfig(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("load AWS config: %w", err)
	}
	return &AWSClient{cfg: cfg}, nil
}

// NewPricingClient creates a Price List service client from the stored config.
func (c *AWSClient) NewPricingClient() PricingAPI {
	return awspricing.NewFromConfig(c.cfg)
}

// S3Pricing fetches S3 Standard storage rates from the Price List API.
type S3Pricing struct {
	api PricingAPI
}

// NewS3Pricing creates a fetcher over api.
func NewS3Pricing(api PricingAPI) *S3Pricing {
	return &S3Pricing{api: api}
}

type awsPriceDoc struct {
	Product struct {
		Attributes map[string]string `json:"attributes"`
	} `json:"product"`
	Terms struct {
		OnDemand map[string]struct {
			PriceDimensions map[string]struct {
				BeginRange   string            `json:"beginRange"`
				Unit         string            `json:"unit"`
				PricePerUnit map[string]string `json:"pricePerUnit"`
			} `json:"priceDimensions"`
		} `json:"OnDemand"`
	} `json:"terms"`
}

// Fetch returns the first-tier S3 Standard rate for an AWS location name
// such as "US East (N. Virginia)".
func (s *S3Pricing) Fetch(ctx context.Context, location string) (float64, error) {
	input := &awspricing.GetProductsInput{
		ServiceCode: aws.String("AmazonS3"),
		Filters: []pricingtypes.Filter{
			termMatch("location", location),
			termMatch("storageClass", "General Purpose"),
			termMatch("volumeType", "Standard"),
		},
		MaxResults: aws.Int32(100),
	}

	for {
		out, err := s.api.GetProducts(ctx, input)
		if err != nil {
			return 0, fmt.Errorf("get products: %w", err)
		}
		for _, raw := range out.PriceList {
			price, ok, err := firstTierPrice(raw)
			if err != nil {
				return 0, err
			}
			if ok {
				return price, nil
			}
		}
		if out.NextToken == nil {
			break
		}
		input.NextToken = out.NextToken
	}

	slog.Debug("No S3 Standard price in Price List response", "location", location)
	return 0, fmt.Errorf("%w: S3 Standard in %s", ErrPriceNotFound, location)
}

func termMatch(field, value string) pricingtypes.Filter {
	return pricingtypes.Filter{
		Type:  pricingtypes.FilterTypeTermMatch,
		Field: aws.String(field),
		Value: aws.String(value),
	}
}

// firstTierPrice extracts the GB-Mo rate of the tier starting at zero.
func firstTierPrice(raw string) (float64, bool, error) {
	var doc awsPriceDoc
	if err := json.Unmarshal([]byte(raw), &doc); err != nil {
		return 0, false, fmt.Errorf("parse price list entry: %w", err)
	}
	for _, term := range doc.Terms.OnDemand {
		for _, dim := range term.PriceDimensions {
			if dim.BeginRange != "0" || dim.Unit != "GB-Mo" {
				continue
			}
			usd, ok := dim.PricePerUnit["USD"]
			if !ok {
				continue
			}
			v, err := strconv.ParseFloat(usd, 64)
			if err != nil {
				return 0, false, fmt.Errorf("parse USD price %q: %w", usd, err)
			}
			return v, true, nil
		}
	}
	return 0, false, nil
}
