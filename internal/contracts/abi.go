// Package contracts holds the ABIs of the deployed registry contracts and
// the eth_call plumbing shared by their readers.
package contracts

import (
	"strings"
	"sync"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

const articleRegistryABIJSON = `[
  {
    "inputs": [
      {"internalType": "string", "name": "contentHash", "type": "string"},
      {"internalType": "string", "name": "sourceUrl", "type": "string"},
      {"internalType": "uint256", "name": "timestamp", "type": "uint256"}
    ],
    "name": "storeArticleHash",
    "outputs": [],
    "stateMutability": "nonpayable",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "string", "name": "contentHash", "type": "string"}],
    "name": "isArticleHashStored",
    "outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "string", "name": "contentHash", "type": "string"}],
    "name": "getArticleData",
    "outputs": [
      {"internalType": "string", "name": "sourceUrl", "type": "string"},
      {"internalType": "uint256", "name": "timestamp", "type": "uint256"},
      {"internalType": "address", "name": "submitter", "type": "address"}
    ],
    "stateMutability": "view",
    "type": "function"
  }
]`

const userVerificationABIJSON = `[
  {
    "inputs": [{"internalType": "address", "name": "user", "type": "address"}],
    "name": "isVerified",
    "outputs": [{"internalType": "bool", "name": "", "type": "bool"}],
    "stateMutability": "view",
    "type": "function"
  },
  {
    "inputs": [{"internalType": "address", "name": "user", "type": "address"}],
    "name": "getUserRole",
    "outputs": [{"internalType": "uint8", "name": "", "type": "uint8"}],
    "stateMutability": "view",
    "type": "function"
  }
]`

var (
	articleRegistryABI     abi.ABI
	articleRegistryABIOnce sync.Once
	articleRegistryABIErr  error

	userVerificationABI     abi.ABI
	userVerificationABIOnce sync.Once
	userVerificationABIErr  error
)

// ArticleRegistryABI returns the parsed article registry ABI.
func ArticleRegistryABI() (abi.ABI, error) {
	articleRegistryABIOnce.Do(func() {
		articleRegistryABI, articleRegistryABIErr = abi.JSON(strings.NewReader(articleRegistryABIJSON))
	})
	return articleRegistryABI, articleRegistryABIErr
}

// UserVerificationABI returns the parsed user verification ABI.
func UserVerificationABI() (abi.ABI, error) {
	userVerificationABIOnce.Do(func() {
		userVerificationABI, userVerificationABIErr = abi.JSON(strings.NewReader(userVerificationABIJSON))
	})
	return userVerificationABI, userVerificationABIErr
}
