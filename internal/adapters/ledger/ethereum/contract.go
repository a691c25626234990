package ethereum

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common"
)

// ABI of the election contract. The contract is the authoritative oracle
// for election rules; this backend only calls it and listens to it.
const electionABI = `[
  {"type":"function","name":"candidatesCount","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"uint256"}]},
  {"type":"function","name":"candidates","stateMutability":"view","inputs":[{"name":"","type":"uint256"}],"outputs":[{"name":"id","type":"uint256"},{"name":"name","type":"string"},{"name":"party","type":"string"},{"name":"voteCount","type":"uint256"}]},
  {"type":"function","name":"getElection","stateMutability":"view","inputs":[],"outputs":[{"name":"phase","type":"uint8"},{"name":"name","type":"string"},{"name":"startTime","type":"uint256"},{"name":"endTime","type":"uint256"},{"name":"registeredVoters","type":"uint256"},{"name":"totalVotes","type":"uint256"},{"name":"candidateCount","type":"uint256"}]},
  {"type":"function","name":"voters","stateMutability":"view","inputs":[{"name":"","type":"address"}],"outputs":[{"name":"isRegistered","type":"bool"},{"name":"hasVoted","type":"bool"},{"name":"votedCandidateId","type":"uint256"}]},
  {"type":"function","name":"addCandidate","stateMutability":"nonpayable","inputs":[{"name":"name","type":"string"},{"name":"party","type":"string"}],"outputs":[]},
  {"type":"function","name":"registerVoter","stateMutability":"nonpayable","inputs":[{"name":"voter","type":"address"}],"outputs":[]},
  {"type":"function","name":"registerVoters","stateMutability":"nonpayable","inputs":[{"name":"voters","type":"address[]"}],"outputs":[]},
  {"type":"function","name":"startElection","stateMutability":"nonpayable","inputs":[{"name":"name","type":"string"},{"name":"durationMinutes","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"endElection","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"resetElection","stateMutability":"nonpayable","inputs":[],"outputs":[]},
  {"type":"function","name":"castVote","stateMutability":"nonpayable","inputs":[{"name":"candidateId","type":"uint256"}],"outputs":[]},
  {"type":"function","name":"transferAdmin","stateMutability":"nonpayable","inputs":[{"name":"newAdmin","type":"address"}],"outputs":[]},
  {"type":"event","name":"VoterRegistered","inputs":[{"name":"voter","type":"address","indexed":true}],"anonymous":false},
  {"type":"event","name":"VoteCast","inputs":[{"name":"voter","type":"address","indexed":true},{"name":"candidateId","type":"uint256","indexed":false},{"name":"candidateName","type":"string","indexed":false}],"anonymous":false},
  {"type":"event","name":"ElectionStarted","inputs":[{"name":"name","type":"string","indexed":false},{"name":"startTime","type":"uint256","indexed":false},{"name":"endTime","type":"uint256","indexed":false}],"anonymous":false},
  {"type":"event","name":"ElectionEnded","inputs":[{"name":"name","type":"string","indexed":false},{"name":"totalVotes","type":"uint256","indexed":false}],"anonymous":false},
  {"type":"event","name":"CandidateAdded","inputs":[{"name":"candidateId","type":"uint256","indexed":false},{"name":"name","type":"string","indexed":false},{"name":"party","type":"string","indexed":false}],"anonymous":false},
  {"type":"event","name":"AdminChanged","inputs":[{"name":"previousAdmin","type":"address","indexed":true},{"name":"newAdmin","type":"address","indexed":true}],"anonymous":false}
]`

// Log layouts for UnpackLog. Field names follow the ABI argument names.

type voterRegisteredLog struct {
	Voter common.Address
}

type voteCastLog struct {
	Voter         common.Address
	CandidateId   *big.Int
	CandidateName string
}

type electionStartedLog struct {
	Name      string
	StartTime *big.Int
	EndTime   *big.Int
}

type electionEndedLog struct {
	Name       string
	TotalVotes *big.Int
}

type candidateAddedLog struct {
	CandidateId *big.Int
	Name        string
	Party       string
}

type adminChangedLog struct {
	PreviousAdmin common.Address
	NewAdmin      common.Address
}
