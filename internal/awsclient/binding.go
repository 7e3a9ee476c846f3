package awsclient

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ssm"

	"github.com/EMC-Underground/munger3/internal/config"
)

// GetParameterAPI is the subset of the SSM client used to read bindings.
type GetParameterAPI interface {
	GetParameter(ctx context.Context, params *ssm.GetParameterInput, optFns ...func(*ssm.Options)) (*ssm.GetParameterOutput, error)
}

// Binding is the service binding of an object store as stored in SSM.
type Binding struct {
	AccessKeyID     string `json:"accessKeyId"`
	SecretAccessKey string `json:"secretAccessKey"`
	Region          string `json:"region,omitempty"`
	Endpoint        string `json:"endpoint,omitempty"`
}

// ResolveBinding reads and decrypts the JSON binding stored under name.
func ResolveBinding(ctx context.Context, client GetParameterAPI, name string) (*Binding, error) {
	out, err := client.GetParameter(ctx, &ssm.GetParameterInput{
		Name:           aws.String(name),
		WithDecryption: aws.Bool(true),
	})
	if err != nil {
		return nil, fmt.Errorf("ssm get parameter %s: %w", name, err)
	}
	if out.Parameter == nil || out.Parameter.Value == nil {
		return nil, fmt.Errorf("ssm parameter %s has no value", name)
	}

	var b Binding
	if err := json.Unmarshal([]byte(aws.ToString(out.Parameter.Value)), &b); err != nil {
		return nil, fmt.Errorf("decode binding %s: %w", name, err)
	}
	b.AccessKeyID = strings.TrimSpace(b.AccessKeyID)
	b.SecretAccessKey = strings.TrimSpace(b.SecretAccessKey)
	if b.AccessKeyID == "" || b.SecretAccessKey == "" {
		return nil, fmt.Errorf("binding %s: accessKeyId and secretAccessKey are required", name)
	}
	return &b, nil
}

// Apply overlays the binding on sc. Empty binding fields keep sc's values.
func (b *Binding) Apply(sc config.StoreConfig) config.StoreConfig {
	sc.AccessKeyID = b.AccessKeyID
	sc.SecretAccessKey = b.SecretAccessKey
	if r := strings.TrimSpace(b.Region); r != "" {
		sc.Region = r
	}
	if ep := strings.TrimSpace(b.Endpoint); ep != "" {
		sc.Endpoint = ep
	}
	return sc
}
