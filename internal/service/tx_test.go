package service

import "context"

type testTxRepos struct {
	chat ChatRepositoryInterface
}

func (t *testTxRepos) Chat() ChatRepositoryInterface {
	return t.chat
}

type testTxRunner struct {
	repos  TxRepositories
	called bool
	err    error
}

func (t *testTxRunner) WithTx(ctx context.Context, fn func(repos TxRepositories) error) error {
	t.called = true
	if t.err != nil {
		return t.err
	}
	return fn(t.repos)
}
