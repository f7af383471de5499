package repoargs

type RepositoryName string

const (
	UserRepoName          RepositoryName = "user"
	AddressRepoName       RepositoryName = "address"
	MerchantRepoName      RepositoryName = "merchant"
	PointsBalanceRepoName RepositoryName = "points_balance"
	TransactionRepoName   RepositoryName = "transaction"
)
