package ps

import (
	"fmt"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/go-git/go-git/v6/plumbing/object"
)

// Transaction identifies one committed snapshot operation.
type Transaction struct {
	Id     string
	When   time.Time
	Author string // "Name <email>" format
}

func (transaction Transaction) String() string {
	return fmt.Sprintf("Transaction{Id: %s, When: %s, Author: %s}", transaction.Id, transaction.When, transaction.Author)
}

func commitTransaction(c *object.Commit) Transaction {
	author := ""
	if c.Author.Name != "" || c.Author.Email != "" {
		author = fmt.Sprintf("%s <%s>", c.Author.Name, c.Author.Email)
	}

	return Transaction{
		Id:     c.Hash.String(),
		When:   c.Committer.When,
		Author: author,
	}
}

func (persistence *Persistence) LatestTransaction() Transaction {
	headRef, err := persistence.repo.Head()
	if err != nil || headRef == nil {
		// No commits yet
		return Transaction{}
	}

	commit, err := persistence.repo.CommitObject(headRef.Hash())
	if err != nil {
		return Transaction{}
	}

	return commitTransaction(commit)
}

// TransactionsSince lists every transaction committed after the given
// time, newest first.
func (persistence *Persistence) TransactionsSince(asof time.Time) []Transaction {
	return persistence.listTransactions(&git.LogOptions{
		Since: &asof,
	})
}

// TransactionsFrom lists the transaction with the given id and all of
// its ancestors, newest first.
func (persistence *Persistence) TransactionsFrom(asof string) []Transaction {
	return persistence.listTransactions(&git.LogOptions{
		From: plumbing.NewHash(asof),
	})
}

func (persistence *Persistence) listTransactions(opts *git.LogOptions) []Transaction {
	cIter, err := persistence.repo.Log(opts)
	if err != nil {
		return nil
	}

	var transactions []Transaction
	cIter.ForEach(func(c *object.Commit) error {
		transactions = append(transactions, commitTransaction(c))
		return nil
	})

	return transactions
}
