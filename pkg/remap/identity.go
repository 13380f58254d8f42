package remap

import (
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/identity"
	"github.com/nftindexer/aptos-marketplace-indexer/pkg/models"
)

// resolveDerivedIdentity fills token_data_id/collection_id when the
// configured mapping did not supply them directly, and sets token_standard
// accordingly: a directly-supplied id (from a nested
// token_metadata.token.inner / collection_metadata.collection.inner
// object address) always takes precedence over the derived sha3 form, and
// implies token_standard "v2"; otherwise a successfully derived id
// implies "v1".
func resolveDerivedIdentity(a *models.Activity) {
	suppliedTokenID := a.TokenDataID != ""
	suppliedCollectionID := a.CollectionID != ""

	if !suppliedTokenID {
		a.TokenDataID = identity.DeriveTokenDataID(a.CreatorAddress, a.CollectionName, a.TokenName)
	}
	if !suppliedCollectionID {
		a.CollectionID = identity.DeriveCollectionID(a.CreatorAddress, a.CollectionName)
	}

	if suppliedTokenID || suppliedCollectionID {
		a.TokenStandard = "v2"
	} else {
		a.TokenStandard = "v1"
	}
}
