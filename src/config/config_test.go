package config

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const sampleConfig = `
[project_cfg]
name = "EasySwap"

[chain_cfg]
name = "sepolia"
id = 11155111

[[chain_cfg.endpoints]]
chain_id = 11155111
url = "http://127.0.0.1:8545"

[[chain_cfg.endpoints]]
chain_id = 1
url = "http://127.0.0.1:8546"

[wallet]
chain_id = 1

[contract_cfg]
marketplace_address = "0x5FbDB2315678afecb367f032d93F642f64180aa3"

[[kv.redis]]
host = "127.0.0.1:6379"
type = "node"
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestUnmarshalConfig(t *testing.T) {
	t.Setenv("ESL_WALLET_PRIVATE_KEY", "0xabc")

	c, err := UnmarshalConfig(writeConfig(t, sampleConfig))
	require.NoError(t, err)

	assert.Equal(t, "EasySwap", c.ProjectCfg.Name)
	assert.Equal(t, ":9000", c.Api.Port)
	assert.Equal(t, int64(11155111), c.ChainCfg.ID)
	assert.Equal(t, map[int64]string{
		11155111: "http://127.0.0.1:8545",
		1:        "http://127.0.0.1:8546",
	}, c.ChainCfg.EndpointMap())
	assert.Equal(t, int64(1), c.Wallet.ChainID)
	assert.Equal(t, "0xabc", c.Wallet.PrivateKey)
	assert.True(t, c.Kv.Enabled())
	assert.Equal(t, "127.0.0.1:6379", c.Kv.Redis[0].Host)
	assert.False(t, c.DB.Enabled())
	assert.Equal(t, 30*time.Second, c.Page.FetchTimeout())
	assert.Equal(t, 1500*time.Millisecond, c.Page.RenderWait())
	assert.Equal(t, 30*time.Minute, c.Page.SessionTTL())
	assert.Equal(t, "https://ipfs.io/ipfs/", c.Metadata.IpfsGateway)
}

func TestUnmarshalConfigInvalid(t *testing.T) {
	_, err := UnmarshalConfig(writeConfig(t, `
[project_cfg]
name = "EasySwap"
[chain_cfg]
name = "sepolia"
id = 11155111
[[chain_cfg.endpoints]]
chain_id = 11155111
url = "http://127.0.0.1:8545"
[contract_cfg]
marketplace_address = "0x123"
`))
	assert.ErrorContains(t, err, "MarketplaceAddress must be a valid address")

	_, err = UnmarshalConfig(writeConfig(t, `
[project_cfg]
name = "EasySwap"
[chain_cfg]
name = "sepolia"
id = 5
[[chain_cfg.endpoints]]
chain_id = 11155111
url = "http://127.0.0.1:8545"
[contract_cfg]
marketplace_address = "0x5FbDB2315678afecb367f032d93F642f64180aa3"
`))
	assert.ErrorContains(t, err, "no endpoint for chain 5")

	_, err = UnmarshalConfig(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestConfigLogRedactsSecrets(t *testing.T) {
	t.Setenv("ESL_WALLET_PRIVATE_KEY", "0xwallet-secret")

	c, err := UnmarshalConfig(writeConfig(t, sampleConfig+`
pass = "redis-secret"

[db]
user = "easyuser"
password = "db-secret"
host = "127.0.0.1"
port = 3306
database = "easyswap"
`))
	require.NoError(t, err)
	assert.Equal(t, "redis-secret", c.Kv.Redis[0].Pass)
	assert.Equal(t, "db-secret", c.DB.Password)

	// 与启动日志相同的输出方式
	var buf bytes.Buffer
	core := zapcore.NewCore(zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig()), zapcore.AddSync(&buf), zap.InfoLevel)
	zap.New(core).Info("listing server start", zap.Any("config", c))

	out := buf.String()
	assert.Contains(t, out, `"user":"easyuser"`)
	assert.Contains(t, out, `"host":"127.0.0.1:6379"`)
	assert.NotContains(t, out, "db-secret")
	assert.NotContains(t, out, "redis-secret")
	assert.NotContains(t, out, "wallet-secret")
}
