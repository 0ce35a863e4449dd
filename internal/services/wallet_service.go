package services

import (
	"context"
	"fmt"

	"github.com/worldbinder/backend/internal/config"
	"github.com/worldbinder/backend/internal/models"
	"github.com/worldbinder/backend/internal/solana"
	"go.uber.org/zap"
)

// MaxScannedNFTs caps how many collection NFTs a scan returns; only the
// first few matter for the in-game bonus.
const MaxScannedNFTs = 3

// AssetIndexer is the DAS-style asset lookup.
type AssetIndexer interface {
	GetAssetsByOwner(ctx context.Context, owner string) ([]solana.Asset, error)
}

// TokenBalanceReader reads an SPL token balance for (owner, mint).
type TokenBalanceReader interface {
	GetTokenBalance(ctx context.Context, owner, mint string) (float64, error)
}

type ScanResult struct {
	NFTs        []models.ScannedNFT `json:"nfts"`
	AttackBonus int                 `json:"attackBonus"`
}

type WalletService struct {
	indexer AssetIndexer
	rpc     TokenBalanceReader
	cfg     *config.Config
	log     *zap.Logger
}

func NewWalletService(indexer AssetIndexer, rpc TokenBalanceReader, cfg *config.Config, log *zap.Logger) *WalletService {
	return &WalletService{indexer: indexer, rpc: rpc, cfg: cfg, log: log}
}

// ScanWallet looks up the wallet's assets, keeps only the configured
// collection, and derives the in-game attack bonus from the owned count.
func (s *WalletService) ScanWallet(ctx context.Context, walletAddress string) (*ScanResult, error) {
	assets, err := s.indexer.GetAssetsByOwner(ctx, walletAddress)
	if err != nil {
		return nil, fmt.Errorf("asset scan failed: %w", err)
	}

	nfts := FilterCollectionAssets(assets, s.cfg.CollectionAddress, MaxScannedNFTs, s.cfg.NFTStatsSalt)

	s.log.Info("wallet scanned",
		zap.String("wallet", walletAddress),
		zap.Int("total_assets", len(assets)),
		zap.Int("collection_nfts", len(nfts)),
	)

	return &ScanResult{
		NFTs:        nfts,
		AttackBonus: AttackBonus(len(nfts)),
	}, nil
}

// FilterCollectionAssets keeps assets in the given collection, up to max,
// mapped into game NFTs with derived stats. Order follows the indexer.
func FilterCollectionAssets(assets []solana.Asset, collection string, max int, statsSalt string) []models.ScannedNFT {
	nfts := make([]models.ScannedNFT, 0, max)
	if collection == "" {
		return nfts
	}

	for _, a := range assets {
		if len(nfts) >= max {
			break
		}
		if !a.InCollection(collection) {
			continue
		}

		nft := models.ScannedNFT{
			ID:     a.ID,
			Name:   a.Content.Metadata.Name,
			Rarity: models.RarityCommon,
			Level:  1,
		}
		if nft.Name == "" {
			nft.Name = "Unknown NFT"
		}
		if len(a.Content.Files) > 0 {
			nft.Image = a.Content.Files[0].URI
		}

		for _, attr := range a.Content.Metadata.Attributes {
			value := fmt.Sprintf("%v", attr.Value)
			switch attr.TraitType {
			case "rarity", "Rarity":
				if models.IsValidRarity(value) {
					nft.Rarity = value
				}
			case "level", "Level":
				var lvl int
				if _, err := fmt.Sscanf(value, "%d", &lvl); err == nil && lvl > 0 {
					nft.Level = lvl
				}
			default:
				if nft.Traits == nil {
					nft.Traits = make(map[string]string)
				}
				nft.Traits[attr.TraitType] = value
			}
		}

		nft.Stats = GenerateNFTStats(nft.ID, nft.Rarity, statsSalt)
		nfts = append(nfts, nft)
	}
	return nfts
}

// GetTokenBalance reads the on-chain balance of the game token.
func (s *WalletService) GetTokenBalance(ctx context.Context, walletAddress string) (float64, error) {
	if s.cfg.TokenMint == "" {
		return 0, fmt.Errorf("token mint not configured")
	}
	return s.rpc.GetTokenBalance(ctx, walletAddress, s.cfg.TokenMint)
}
