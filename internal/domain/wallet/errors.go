package wallet

import "errors"

var (
	ErrTransactionNotFound = errors.New("transaction not found")
	ErrWalletNotFound      = errors.New("wallet not found")
	ErrAccountNotFound     = errors.New("no wallet information found for agent")
	ErrInvalidAmount       = errors.New("invalid transaction amount")
	ErrInsufficientBalance = errors.New("insufficient balance for withdrawal")
	ErrInvalidAddress      = errors.New("invalid wallet address")
	ErrSessionExpired      = errors.New("invalid or expired session")
)
