// Package metadata 解析 NFT tokenURI 指向的元数据
package metadata

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapListing/src/common/xzap"
	"github.com/ProjectsTask/EasySwapListing/src/marketplace"
)

const (
	DefaultGateway = "https://ipfs.io/ipfs/"
	arweaveGateway = "https://arweave.net/"

	dataJSONPrefix   = "data:application/json;base64,"
	dataJSONUTF8     = "data:application/json;utf8,"
	maxMetadataBytes = 1 << 20
)

var cidPattern = regexp.MustCompile("(Qm[1-9A-HJ-NP-Za-km-z]{44}.*$)")

// Config 元数据抓取配置
type Config struct {
	IpfsGateway string `toml:"ipfs_gateway" mapstructure:"ipfs_gateway" json:"ipfs_gateway"`
	TimeoutSec  int    `toml:"timeout_sec" mapstructure:"timeout_sec" json:"timeout_sec"`
	Retries     int    `toml:"retries" mapstructure:"retries" json:"retries"`
}

// Resolver 抓取并解析 NFT 元数据
type Resolver struct {
	client  *retryablehttp.Client
	gateway string
}

// NewResolver 创建元数据解析器
func NewResolver(c Config) *Resolver {
	client := retryablehttp.NewClient()
	client.RetryMax = c.Retries
	client.RetryWaitMin = 200 * time.Millisecond
	client.RetryWaitMax = 2 * time.Second
	client.Logger = leveledLogger{}
	if c.TimeoutSec > 0 {
		client.HTTPClient.Timeout = time.Duration(c.TimeoutSec) * time.Second
	}

	gateway := c.IpfsGateway
	if gateway == "" {
		gateway = DefaultGateway
	}
	if !strings.HasSuffix(gateway, "/") {
		gateway += "/"
	}

	return &Resolver{client: client, gateway: gateway}
}

// ResolveURI 将 ipfs:// ar:// 以及裸 CID 转换为可访问的 http 地址
func (r *Resolver) ResolveURI(uri string) string {
	uri = strings.TrimSpace(uri)
	switch {
	case uri == "":
		return ""
	case strings.HasPrefix(uri, "ipfs://"):
		path := strings.TrimPrefix(uri, "ipfs://")
		path = strings.TrimPrefix(path, "ipfs/")
		return r.gateway + path
	case strings.HasPrefix(uri, "ar://"):
		return arweaveGateway + strings.TrimPrefix(uri, "ar://")
	case strings.HasPrefix(uri, "data:"):
		return uri
	}

	if u, err := url.Parse(uri); err == nil && u.Scheme != "" && u.Host != "" {
		return uri
	}

	if parts := cidPattern.FindStringSubmatch(uri); len(parts) == 2 {
		return r.gateway + parts[1]
	}

	return uri
}

// Fetch 读取 uri 对应的元数据, 图片地址同样转换为 http 地址
func (r *Resolver) Fetch(ctx context.Context, uri string) (*marketplace.Asset, error) {
	raw, err := r.read(ctx, uri)
	if err != nil {
		return nil, err
	}

	var asset marketplace.Asset
	if err := json.Unmarshal(raw, &asset); err != nil {
		return nil, errors.Wrap(err, "failed on decode metadata")
	}
	asset.Image = r.ResolveURI(asset.Image)

	return &asset, nil
}

func (r *Resolver) read(ctx context.Context, uri string) ([]byte, error) {
	uri = strings.TrimSpace(uri)
	switch {
	case strings.HasPrefix(uri, dataJSONPrefix):
		raw, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(uri, dataJSONPrefix))
		if err != nil {
			return nil, errors.Wrap(err, "failed on decode data uri")
		}
		return raw, nil
	case strings.HasPrefix(uri, dataJSONUTF8):
		return []byte(strings.TrimPrefix(uri, dataJSONUTF8)), nil
	}

	target := r.ResolveURI(uri)
	if target == "" {
		return nil, errors.New("empty metadata uri")
	}

	req, err := retryablehttp.NewRequest(http.MethodGet, target, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed on build metadata request")
	}
	req = req.WithContext(ctx)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "failed on fetch metadata")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("metadata %s returned status %d", target, resp.StatusCode)
	}

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxMetadataBytes))
	if err != nil {
		return nil, errors.Wrap(err, "failed on read metadata")
	}
	return raw, nil
}

// leveledLogger 将 retryablehttp 的日志转发到 zap
type leveledLogger struct{}

func (leveledLogger) Error(msg string, kv ...interface{}) {
	xzap.WithContext(context.Background()).Error(msg, zap.Any("kv", kv))
}

func (leveledLogger) Info(msg string, kv ...interface{}) {
	xzap.WithContext(context.Background()).Info(msg, zap.Any("kv", kv))
}

func (leveledLogger) Debug(msg string, kv ...interface{}) {
	xzap.WithContext(context.Background()).Debug(msg, zap.Any("kv", kv))
}

func (leveledLogger) Warn(msg string, kv ...interface{}) {
	xzap.WithContext(context.Background()).Warn(msg, zap.Any("kv", kv))
}
