package registrar

import (
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// flowABIJSON is the slice of the storage flow contract this tool calls.
const flowABIJSON = `[
  {
    "type":"function",
    "name":"store",
    "stateMutability":"payable",
    "inputs":[
      {"name":"_root","type":"bytes32","internalType":"bytes32"},
      {"name":"_dataSize","type":"uint64","internalType":"uint64"}
    ],
    "outputs":[]
  }
]`

// FlowContract packs calls to the flow contract.
type FlowContract struct {
	abi abi.ABI
}

func NewFlowContract() (*FlowContract, error) {
	parsed, err := abi.JSON(strings.NewReader(flowABIJSON))
	if err != nil {
		return nil, err
	}
	return &FlowContract{abi: parsed}, nil
}

// PackStore encodes store(bytes32 _root, uint64 _dataSize).
func (f *FlowContract) PackStore(root [32]byte, dataSize uint64) ([]byte, error) {
	return f.abi.Pack("store", root, dataSize)
}

// StoreSelector is the 4-byte method id of store.
func (f *FlowContract) StoreSelector() []byte {
	return f.abi.Methods["store"].ID
}
