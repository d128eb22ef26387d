package gauge

// Kind selects which reading a Transaction asks the backend for.
type Kind uint8

const (
	KindCapacity Kind = iota // per-mille level
	KindVoltage              // millivolts
)

func (k Kind) String() string {
	switch k {
	case KindCapacity:
		return "capacity"
	case KindVoltage:
		return "voltage"
	default:
		return "unknown"
	}
}

func (k Kind) valid() bool { return k == KindCapacity || k == KindVoltage }

// Transaction is one queued backend read.
type Transaction struct {
	Kind Kind
}

// txQueue is an unbounded FIFO. It is not synchronised itself; every access
// happens with the owning gauge's critical section held.
type txQueue struct {
	buf  []Transaction
	head int
}

func (q *txQueue) push(t Transaction) {
	q.buf = append(q.buf, t)
}

func (q *txQueue) front() (Transaction, bool) {
	if q.head == len(q.buf) {
		return Transaction{}, false
	}
	return q.buf[q.head], true
}

func (q *txQueue) pop() {
	if q.head == len(q.buf) {
		return
	}
	q.head++
	if q.head == len(q.buf) {
		q.buf = q.buf[:0]
		q.head = 0
	}
}

func (q *txQueue) len() int { return len(q.buf) - q.head }
