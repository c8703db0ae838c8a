package badger

import "go.mongodb.org/mongo-driver/bson/primitive"

const recordPrefix = "rec"

// makeCollectionPrefix generates the key prefix shared by a collection's records.
// Format: rec:collection:
func makeCollectionPrefix(collection string) []byte {
	buf := make([]byte, 0, len(recordPrefix)+len(collection)+2)
	buf = append(buf, recordPrefix...)
	buf = append(buf, ':')
	buf = append(buf, collection...)
	buf = append(buf, ':')
	return buf
}

// makeRecordKey generates a key for a record by ID.
// Format: rec:collection:<12 raw id bytes>. Raw ObjectID bytes sort by
// creation time, so prefix iteration returns records in insertion order.
func makeRecordKey(collection string, id primitive.ObjectID) []byte {
	prefix := makeCollectionPrefix(collection)
	buf := make([]byte, len(prefix)+len(id))
	offset := copy(buf, prefix)
	copy(buf[offset:], id[:])
	return buf
}
