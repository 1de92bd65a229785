package simulate

const (
	defaultRuns               = 16
	defaultBlocksPerRun       = 200
	defaultExtrinsicsPerBlock = 8
	defaultAccounts           = 5
	defaultWorkerCount        = 4

	// percentages
	badHeaderChance = 10
	stakeChance     = 35
	mineChance      = 35

	maxGenesisBalance = 1_000
	maxStakeAmount    = 40
)
