package chain

// Minimal ABI fragments, only the functions this service calls.

const confidentialTokenABI = `[
	{
		"name": "transfer",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "to", "type": "address"},
			{"name": "handle", "type": "bytes32"},
			{"name": "proof", "type": "bytes"}
		],
		"outputs": [{"name": "", "type": "bool"}]
	},
	{
		"name": "confidentialBalanceOf",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"name": "account", "type": "address"}],
		"outputs": [{"name": "", "type": "bytes32"}]
	}
]`

const userRegistryABI = `[
	{
		"name": "addUser",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "userId", "type": "bytes32"},
			{"name": "wallet", "type": "address"},
			{"name": "encryptedProfileBitMap", "type": "bytes32"}
		],
		"outputs": []
	},
	{
		"name": "addNewProfileData",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "userId", "type": "bytes32"},
			{"name": "encryptedProfileBitMap", "type": "bytes32"}
		],
		"outputs": []
	},
	{
		"name": "getEncryptedFHEHash",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"name": "userId", "type": "bytes32"}],
		"outputs": [{"name": "", "type": "bytes32"}]
	}
]`

const complianceHookABI = `[
	{
		"name": "checkUserCompliance",
		"type": "function",
		"stateMutability": "view",
		"inputs": [
			{"name": "user", "type": "address"},
			{"name": "poolId", "type": "bytes32"}
		],
		"outputs": [{"name": "", "type": "bool"}]
	},
	{
		"name": "getPoolRule",
		"type": "function",
		"stateMutability": "view",
		"inputs": [{"name": "poolId", "type": "bytes32"}],
		"outputs": [{"name": "", "type": "bytes32"}]
	},
	{
		"name": "setPoolRule",
		"type": "function",
		"stateMutability": "nonpayable",
		"inputs": [
			{"name": "poolId", "type": "bytes32"},
			{"name": "ruleId", "type": "bytes32"}
		],
		"outputs": []
	}
]`
