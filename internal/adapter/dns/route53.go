package dns

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsConfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/route53"
	"github.com/aws/aws-sdk-go-v2/service/route53/types"
	"go.uber.org/zap"

	"pitapat/internal/pkg/config"
)

// route53API 用到的 Route53 接口, 便于测试替换
type route53API interface {
	ChangeResourceRecordSets(ctx context.Context, params *route53.ChangeResourceRecordSetsInput,
		optFns ...func(*route53.Options)) (*route53.ChangeResourceRecordSetsOutput, error)
}

// Route53Manager 在托管区中维护指向 ingress 的 CNAME 记录
type Route53Manager struct {
	api          route53API
	hostedZoneID string
	zone         string
	target       string
	ttl          int64
	logger       *zap.Logger
}

// NewRoute53Manager 使用默认凭证链创建客户端
func NewRoute53Manager(ctx context.Context, cfg *config.DNSConfig, zone string, logger *zap.Logger) (*Route53Manager, error) {
	awsCfg, err := awsConfig.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("加载AWS配置失败: %w", err)
	}
	if cfg.Region != "" {
		awsCfg.Region = cfg.Region
	} else if awsCfg.Region == "" {
		awsCfg.Region = "us-east-1"
	}
	return newRoute53Manager(route53.NewFromConfig(awsCfg), cfg, zone, logger), nil
}

func newRoute53Manager(api route53API, cfg *config.DNSConfig, zone string, logger *zap.Logger) *Route53Manager {
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = 300
	}
	return &Route53Manager{
		api:          api,
		hostedZoneID: cfg.HostedZoneID,
		zone:         zone,
		target:       cfg.Target,
		ttl:          ttl,
		logger:       logger.With(zap.String("adapter", "route53")),
	}
}

func (m *Route53Manager) AddRecord(ctx context.Context, host string) error {
	return m.change(ctx, types.ChangeActionUpsert, host)
}

func (m *Route53Manager) DeleteRecord(ctx context.Context, host string) error {
	return m.change(ctx, types.ChangeActionDelete, host)
}

func (m *Route53Manager) change(ctx context.Context, action types.ChangeAction, host string) error {
	name := fqdn(host, m.zone)
	_, err := m.api.ChangeResourceRecordSets(ctx, &route53.ChangeResourceRecordSetsInput{
		HostedZoneId: aws.String(m.hostedZoneID),
		ChangeBatch: &types.ChangeBatch{
			Changes: []types.Change{{
				Action: action,
				ResourceRecordSet: &types.ResourceRecordSet{
					Name:            aws.String(name),
					Type:            types.RRTypeCname,
					TTL:             aws.Int64(m.ttl),
					ResourceRecords: []types.ResourceRecord{{Value: aws.String(m.target)}},
				},
			}},
		},
	})
	if err != nil {
		return fmt.Errorf("%s DNS记录 %s 失败: %w", action, name, err)
	}
	m.logger.Info("DNS记录已变更", zap.String("action", string(action)), zap.String("name", name))
	return nil
}
