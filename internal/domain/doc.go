// Package domain defines cards, card sets and the validation rules every
// stored card obeys. Game play lives in the game subpackage.
package domain
