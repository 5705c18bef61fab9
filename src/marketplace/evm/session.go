package evm

import (
	"context"
	"crypto/ecdsa"
	"math/big"
	"strings"
	"sync"
	"time"

	"github.com/ethereum/go-ethereum/accounts/abi/bind"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/ProjectsTask/EasySwapListing/src/common/utils"
	"github.com/ProjectsTask/EasySwapListing/src/common/xzap"
)

const (
	dialAttempts = 3
	dialInterval = time.Second
)

var ErrWalletNotConfigured = errors.New("wallet private key not configured")

// Backend 链节点连接, ethclient.Client 满足该接口
type Backend interface {
	bind.ContractBackend
	bind.DeployBackend
	ChainID(ctx context.Context) (*big.Int, error)
	Close()
}

// DialFunc 连接指定 RPC 节点
type DialFunc func(ctx context.Context, endpoint string) (Backend, error)

// DialEthClient 默认使用 ethclient 连接节点
func DialEthClient(ctx context.Context, endpoint string) (Backend, error) {
	client, err := ethclient.DialContext(ctx, endpoint)
	if err != nil {
		return nil, err
	}
	return client, nil
}

// SessionConfig 钱包会话配置
type SessionConfig struct {
	TargetChainID  int64            // 市场合约所在链
	InitialChainID int64            // 启动时连接的链, 0 表示目标链
	Endpoints      map[int64]string // chain id -> rpc endpoint
	PrivateKey     string           // 签名私钥 (hex), 为空时只读
}

// Session 钱包会话
// 持有签名私钥与当前连接的链, SwitchNetwork 通过重连到对应链的节点完成切换
type Session struct {
	mu        sync.RWMutex
	target    int64
	endpoints map[int64]string
	key       *ecdsa.PrivateKey
	address   common.Address
	backend   Backend
	chainID   int64
	dial      DialFunc
}

// NewSession 创建钱包会话并连接初始链
func NewSession(ctx context.Context, c SessionConfig, dial DialFunc) (*Session, error) {
	if dial == nil {
		dial = DialEthClient
	}
	if c.TargetChainID == 0 {
		return nil, errors.New("target chain id is required")
	}

	s := &Session{
		target:    c.TargetChainID,
		endpoints: c.Endpoints,
		dial:      dial,
	}

	if c.PrivateKey != "" {
		key, err := crypto.HexToECDSA(strings.TrimPrefix(c.PrivateKey, "0x"))
		if err != nil {
			return nil, errors.Wrap(err, "failed on parse wallet private key")
		}
		s.key = key
		s.address = crypto.PubkeyToAddress(key.PublicKey)
	}

	initial := c.InitialChainID
	if initial == 0 {
		initial = c.TargetChainID
	}
	backend, err := s.connect(ctx, initial)
	if err != nil {
		return nil, err
	}
	s.backend = backend
	s.chainID = initial

	return s, nil
}

func (s *Session) connect(ctx context.Context, chainID int64) (Backend, error) {
	endpoint, ok := s.endpoints[chainID]
	if !ok || endpoint == "" {
		return nil, errors.Errorf("no rpc endpoint configured for chain %d", chainID)
	}

	var backend Backend
	err := utils.Retry("dial chain", dialAttempts, dialInterval, func() error {
		var err error
		backend, err = s.dial(ctx, endpoint)
		return err
	})
	if err != nil {
		return nil, errors.Wrapf(err, "failed on dial chain %d", chainID)
	}

	return backend, nil
}

// Address 当前签名地址, 未配置私钥时为空
func (s *Session) Address() string {
	if s.key == nil {
		return ""
	}
	return s.address.Hex()
}

// TargetChainID 市场合约所在链
func (s *Session) TargetChainID() int64 {
	return s.target
}

// Backend 当前连接
func (s *Session) Backend() Backend {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backend
}

// NetworkMismatch 查询节点当前链 ID 并与目标链比较
func (s *Session) NetworkMismatch(ctx context.Context) (bool, error) {
	chainID, err := s.Backend().ChainID(ctx)
	if err != nil {
		return false, errors.Wrap(err, "failed on get chain id")
	}
	return chainID.Int64() != s.target, nil
}

// SwitchNetwork 切换到指定链, 成功后关闭旧连接
func (s *Session) SwitchNetwork(ctx context.Context, chainID int64) error {
	backend, err := s.connect(ctx, chainID)
	if err != nil {
		return err
	}

	got, err := backend.ChainID(ctx)
	if err != nil {
		backend.Close()
		return errors.Wrap(err, "failed on get chain id")
	}
	if got.Int64() != chainID {
		backend.Close()
		return errors.Errorf("endpoint for chain %d reports chain %d", chainID, got.Int64())
	}

	s.mu.Lock()
	old := s.backend
	s.backend = backend
	s.chainID = chainID
	s.mu.Unlock()

	if old != nil {
		old.Close()
	}
	xzap.WithContext(ctx).Info("wallet network switched", zap.Int64("chain_id", chainID))

	return nil
}

// TransactOpts 构造签名交易参数
func (s *Session) TransactOpts(ctx context.Context, value *big.Int) (*bind.TransactOpts, error) {
	if s.key == nil {
		return nil, ErrWalletNotConfigured
	}

	chainID, err := s.Backend().ChainID(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed on get chain id")
	}

	opts, err := bind.NewKeyedTransactorWithChainID(s.key, chainID)
	if err != nil {
		return nil, errors.Wrap(err, "failed on create transactor")
	}
	opts.Context = ctx
	opts.Value = value

	return opts, nil
}

// Close 关闭连接
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.backend != nil {
		s.backend.Close()
		s.backend = nil
	}
}

// ConnectedChainID 最近一次连接 / 切换到的链
func (s *Session) ConnectedChainID() int64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.chainID
}
