package identity

import (
	"fmt"

	"golang.org/x/crypto/sha3"
)

// DeriveTokenDataID computes sha3_256("{standardized(creator)}::{collection}::{token}")
// and standardizes the result to the canonical address form. It returns
// empty if any input is empty: the id is only produced when all three
// inputs are non-empty.
func DeriveTokenDataID(creator, collectionName, tokenName string) string {
	if creator == "" || collectionName == "" || tokenName == "" {
		return ""
	}
	input := fmt.Sprintf("%s::%s::%s", StandardizeAddress(creator), collectionName, tokenName)
	return hashToAddress(input)
}

// DeriveCollectionID computes sha3_256("{standardized(creator)}::{collection}")
// and standardizes the result. Empty if either input is empty.
func DeriveCollectionID(creator, collectionName string) string {
	if creator == "" || collectionName == "" {
		return ""
	}
	input := fmt.Sprintf("%s::%s", StandardizeAddress(creator), collectionName)
	return hashToAddress(input)
}

func hashToAddress(input string) string {
	sum := sha3.Sum256([]byte(input))
	return StandardizeAddress(fmt.Sprintf("%x", sum))
}
