package ledger

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"golang.org/x/crypto/sha3"
)

const (
	EventWarrantyIssued = "WarrantyIssued"

	// WarrantyIssuedSignature is the canonical event signature hashed into topic 0.
	WarrantyIssuedSignature = "WarrantyIssued(uint256,address,string,string,uint256,uint256)"
)

// WarrantyIssuedTopic is keccak256(WarrantyIssuedSignature).
var WarrantyIssuedTopic = signatureTopic(WarrantyIssuedSignature)

func signatureTopic(signature string) common.Hash {
	h := sha3.NewLegacyKeccak256()
	h.Write([]byte(signature))
	return common.BytesToHash(h.Sum(nil))
}

// ContractABI is the subset of the DigitalWarranty contract this service uses.
const ContractABI = `[
  {"type":"function","name":"issueWarranty","stateMutability":"nonpayable",
   "inputs":[
     {"name":"customer","type":"address"},
     {"name":"productName","type":"string"},
     {"name":"productModel","type":"string"},
     {"name":"serialNumber","type":"string"},
     {"name":"warrantyPeriod","type":"uint256"},
     {"name":"manufacturer","type":"address"},
     {"name":"retailer","type":"address"},
     {"name":"metadataURI","type":"string"}],
   "outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"getWarrantyDetails","stateMutability":"view",
   "inputs":[{"name":"tokenId","type":"uint256"}],
   "outputs":[
     {"name":"productName","type":"string"},
     {"name":"productModel","type":"string"},
     {"name":"serialNumber","type":"string"},
     {"name":"purchaseDate","type":"uint256"},
     {"name":"expiryDate","type":"uint256"},
     {"name":"manufacturer","type":"address"},
     {"name":"retailer","type":"address"},
     {"name":"isValid","type":"bool"}]},
  {"type":"function","name":"isWarrantyValid","stateMutability":"view",
   "inputs":[{"name":"tokenId","type":"uint256"}],
   "outputs":[{"name":"","type":"bool"}]},
  {"type":"function","name":"name","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"function","name":"symbol","stateMutability":"view",
   "inputs":[],"outputs":[{"name":"","type":"string"}]},
  {"type":"event","name":"WarrantyIssued","anonymous":false,
   "inputs":[
     {"name":"tokenId","type":"uint256","indexed":true},
     {"name":"customer","type":"address","indexed":true},
     {"name":"productName","type":"string","indexed":false},
     {"name":"serialNumber","type":"string","indexed":false},
     {"name":"purchaseDate","type":"uint256","indexed":false},
     {"name":"expiryDate","type":"uint256","indexed":false}]},
  {"type":"event","name":"Transfer","anonymous":false,
   "inputs":[
     {"name":"from","type":"address","indexed":true},
     {"name":"to","type":"address","indexed":true},
     {"name":"tokenId","type":"uint256","indexed":true}]}
]`

// ParseABI parses a contract ABI document.
func ParseABI(doc string) (abi.ABI, error) {
	return abi.JSON(strings.NewReader(doc))
}

var defaultABI = mustParseABI(ContractABI)

func mustParseABI(doc string) abi.ABI {
	parsed, err := ParseABI(doc)
	if err != nil {
		panic(err)
	}
	return parsed
}
