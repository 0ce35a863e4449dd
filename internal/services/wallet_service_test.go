package services

import (
	"encoding/json"
	"testing"

	"github.com/worldbinder/backend/internal/models"
	"github.com/worldbinder/backend/internal/solana"
)

const testCollection = "ColLWB1111111111111111111111111111111111111"

func assetsFromJSON(t *testing.T, raw string) []solana.Asset {
	t.Helper()
	var assets []solana.Asset
	if err := json.Unmarshal([]byte(raw), &assets); err != nil {
		t.Fatal(err)
	}
	return assets
}

func collectionAsset(id, name string) string {
	return `{
		"id": "` + id + `",
		"grouping": [{"group_key": "collection", "group_value": "` + testCollection + `"}],
		"content": {"metadata": {"name": "` + name + `"}, "files": [{"uri": "https://img/` + id + `.png"}]}
	}`
}

func TestFilterCollectionAssets_FiltersByCollection(t *testing.T) {
	assets := assetsFromJSON(t, `[
		`+collectionAsset("mint-1", "Binder #1")+`,
		{"id": "mint-2", "grouping": [{"group_key": "collection", "group_value": "OtherCollection"}], "content": {"metadata": {"name": "Stray"}}},
		{"id": "mint-3", "grouping": [], "content": {"metadata": {"name": "Ungrouped"}}}
	]`)

	nfts := FilterCollectionAssets(assets, testCollection, MaxScannedNFTs, "salt")
	if len(nfts) != 1 {
		t.Fatalf("got %d nfts, want 1", len(nfts))
	}
	if nfts[0].ID != "mint-1" {
		t.Errorf("kept %s, want mint-1", nfts[0].ID)
	}
	if nfts[0].Name != "Binder #1" {
		t.Errorf("name = %s", nfts[0].Name)
	}
	if nfts[0].Image != "https://img/mint-1.png" {
		t.Errorf("image = %s", nfts[0].Image)
	}
}

func TestFilterCollectionAssets_CapsAtMax(t *testing.T) {
	raw := `[` + collectionAsset("m1", "a") + `,` + collectionAsset("m2", "b") + `,` +
		collectionAsset("m3", "c") + `,` + collectionAsset("m4", "d") + `]`

	nfts := FilterCollectionAssets(assetsFromJSON(t, raw), testCollection, MaxScannedNFTs, "salt")
	if len(nfts) != MaxScannedNFTs {
		t.Fatalf("got %d nfts, want %d", len(nfts), MaxScannedNFTs)
	}
}

func TestFilterCollectionAssets_EmptyCollectionConfigured(t *testing.T) {
	assets := assetsFromJSON(t, `[`+collectionAsset("m1", "a")+`]`)
	if nfts := FilterCollectionAssets(assets, "", MaxScannedNFTs, "salt"); len(nfts) != 0 {
		t.Fatal("unset collection must return no nfts")
	}
}

func TestFilterCollectionAssets_AttributeMapping(t *testing.T) {
	assets := assetsFromJSON(t, `[{
		"id": "mint-1",
		"grouping": [{"group_key": "collection", "group_value": "`+testCollection+`"}],
		"content": {"metadata": {"name": "Binder", "attributes": [
			{"trait_type": "Rarity", "value": "Legendary"},
			{"trait_type": "Level", "value": "7"},
			{"trait_type": "Element", "value": "Fire"}
		]}}
	}]`)

	nfts := FilterCollectionAssets(assets, testCollection, MaxScannedNFTs, "salt")
	if len(nfts) != 1 {
		t.Fatal("expected one nft")
	}
	nft := nfts[0]
	if nft.Rarity != models.RarityLegendary {
		t.Errorf("rarity = %s, want Legendary", nft.Rarity)
	}
	if nft.Level != 7 {
		t.Errorf("level = %d, want 7", nft.Level)
	}
	if nft.Traits["Element"] != "Fire" {
		t.Errorf("traits = %v", nft.Traits)
	}
	if nft.Stats.Attack < 34 {
		t.Errorf("stats not derived from legendary band: %+v", nft.Stats)
	}
}

func TestFilterCollectionAssets_Defaults(t *testing.T) {
	assets := assetsFromJSON(t, `[{
		"id": "mint-1",
		"grouping": [{"group_key": "collection", "group_value": "`+testCollection+`"}],
		"content": {"metadata": {}}
	}]`)

	nfts := FilterCollectionAssets(assets, testCollection, MaxScannedNFTs, "salt")
	if len(nfts) != 1 {
		t.Fatal("expected one nft")
	}
	if nfts[0].Name != "Unknown NFT" {
		t.Errorf("name = %s, want Unknown NFT", nfts[0].Name)
	}
	if nfts[0].Rarity != models.RarityCommon {
		t.Errorf("rarity = %s, want Common", nfts[0].Rarity)
	}
	if nfts[0].Level != 1 {
		t.Errorf("level = %d, want 1", nfts[0].Level)
	}
}
