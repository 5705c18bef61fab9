package evm

import (
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
)

// marketplaceAbi MarketplaceV3 中列表详情页需要的方法
const marketplaceAbi = `[
{"inputs":[{"internalType":"uint256","name":"_listingId","type":"uint256"}],"name":"getListing","outputs":[{"components":[{"internalType":"uint256","name":"listingId","type":"uint256"},{"internalType":"uint256","name":"tokenId","type":"uint256"},{"internalType":"uint256","name":"quantity","type":"uint256"},{"internalType":"uint256","name":"pricePerToken","type":"uint256"},{"internalType":"uint128","name":"startTimestamp","type":"uint128"},{"internalType":"uint128","name":"endTimestamp","type":"uint128"},{"internalType":"address","name":"listingCreator","type":"address"},{"internalType":"address","name":"assetContract","type":"address"},{"internalType":"address","name":"currency","type":"address"},{"internalType":"enum IDirectListings.TokenType","name":"tokenType","type":"uint8"},{"internalType":"enum IDirectListings.Status","name":"status","type":"uint8"},{"internalType":"bool","name":"reserved","type":"bool"}],"internalType":"struct IDirectListings.Listing","name":"listing","type":"tuple"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"uint256","name":"_auctionId","type":"uint256"}],"name":"getAuction","outputs":[{"components":[{"internalType":"uint256","name":"auctionId","type":"uint256"},{"internalType":"uint256","name":"tokenId","type":"uint256"},{"internalType":"uint256","name":"quantity","type":"uint256"},{"internalType":"uint256","name":"minimumBidAmount","type":"uint256"},{"internalType":"uint256","name":"buyoutBidAmount","type":"uint256"},{"internalType":"uint64","name":"timeBufferInSeconds","type":"uint64"},{"internalType":"uint64","name":"bidBufferBps","type":"uint64"},{"internalType":"uint64","name":"startTimestamp","type":"uint64"},{"internalType":"uint64","name":"endTimestamp","type":"uint64"},{"internalType":"address","name":"auctionCreator","type":"address"},{"internalType":"address","name":"assetContract","type":"address"},{"internalType":"address","name":"currency","type":"address"},{"internalType":"enum IEnglishAuctions.TokenType","name":"tokenType","type":"uint8"},{"internalType":"enum IEnglishAuctions.Status","name":"status","type":"uint8"}],"internalType":"struct IEnglishAuctions.Auction","name":"auction","type":"tuple"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"uint256","name":"_listingId","type":"uint256"},{"internalType":"address","name":"_buyFor","type":"address"},{"internalType":"uint256","name":"_quantity","type":"uint256"},{"internalType":"address","name":"_currency","type":"address"},{"internalType":"uint256","name":"_expectedTotalPrice","type":"uint256"}],"name":"buyFromListing","outputs":[],"stateMutability":"payable","type":"function"},
{"inputs":[{"components":[{"internalType":"address","name":"assetContract","type":"address"},{"internalType":"uint256","name":"tokenId","type":"uint256"},{"internalType":"uint256","name":"quantity","type":"uint256"},{"internalType":"address","name":"currency","type":"address"},{"internalType":"uint256","name":"totalPrice","type":"uint256"},{"internalType":"uint256","name":"expirationTimestamp","type":"uint256"}],"internalType":"struct IOffers.OfferParams","name":"_params","type":"tuple"}],"name":"makeOffer","outputs":[{"internalType":"uint256","name":"_offerId","type":"uint256"}],"stateMutability":"nonpayable","type":"function"},
{"inputs":[{"internalType":"uint256","name":"_auctionId","type":"uint256"},{"internalType":"uint256","name":"_bidAmount","type":"uint256"}],"name":"bidInAuction","outputs":[],"stateMutability":"payable","type":"function"}
]`

// tokenAbi ERC721 tokenURI, ERC1155 uri, ERC20 decimals
const tokenAbi = `[
{"inputs":[{"internalType":"uint256","name":"tokenId","type":"uint256"}],"name":"tokenURI","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"},
{"inputs":[{"internalType":"uint256","name":"id","type":"uint256"}],"name":"uri","outputs":[{"internalType":"string","name":"","type":"string"}],"stateMutability":"view","type":"function"},
{"inputs":[],"name":"decimals","outputs":[{"internalType":"uint8","name":"","type":"uint8"}],"stateMutability":"view","type":"function"}
]`

const (
	TokenTypeERC721  uint8 = 0
	TokenTypeERC1155 uint8 = 1
)

var (
	parsedMarketplaceAbi = mustParse(marketplaceAbi)
	parsedTokenAbi       = mustParse(tokenAbi)
)

func mustParse(raw string) abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(raw))
	if err != nil {
		panic(err)
	}
	return parsed
}

// listingTuple 对应 IDirectListings.Listing
type listingTuple struct {
	ListingId      *big.Int
	TokenId        *big.Int
	Quantity       *big.Int
	PricePerToken  *big.Int
	StartTimestamp *big.Int
	EndTimestamp   *big.Int
	ListingCreator common.Address
	AssetContract  common.Address
	Currency       common.Address
	TokenType      uint8
	Status         uint8
	Reserved       bool
}

// auctionTuple 对应 IEnglishAuctions.Auction
type auctionTuple struct {
	AuctionId           *big.Int
	TokenId             *big.Int
	Quantity            *big.Int
	MinimumBidAmount    *big.Int
	BuyoutBidAmount     *big.Int
	TimeBufferInSeconds uint64
	BidBufferBps        uint64
	StartTimestamp      uint64
	EndTimestamp        uint64
	AuctionCreator      common.Address
	AssetContract       common.Address
	Currency            common.Address
	TokenType           uint8
	Status              uint8
}

// offerParamsTuple 对应 IOffers.OfferParams
type offerParamsTuple struct {
	AssetContract       common.Address
	TokenId             *big.Int
	Quantity            *big.Int
	Currency            common.Address
	TotalPrice          *big.Int
	ExpirationTimestamp *big.Int
}
