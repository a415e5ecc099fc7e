package domain

// Customer receives goods through delivery notes.
type Customer struct {
	ID      string `db:"customer_id" json:"customer_id"`
	Name    string `db:"name" json:"name"`
	Phone   string `db:"phone" json:"phone"`
	Address string `db:"address" json:"address"`
}

// Supplier ships goods recorded on received notes.
type Supplier struct {
	ID             string `db:"supplier_id" json:"supplier_id"`
	Name           string `db:"name" json:"name"`
	Address        string `db:"address" json:"address"`
	Representative string `db:"representative" json:"representative"`
}
