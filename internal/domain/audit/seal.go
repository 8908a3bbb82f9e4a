// Package audit implementa el sello de integridad del ledger: una huella
// SHA3-256 sobre la representación XML canónica (C14N) de los campos
// inmutables de cada registro. Si payload_snapshot o executed_at se
// reescriben en el storage, el sello deja de verificar.
package audit

import (
	"bytes"
	"encoding/hex"
	"encoding/json"
	"encoding/xml"
	"fmt"
	"time"

	"github.com/beevik/etree"
	"github.com/ucarion/c14n"
	"golang.org/x/crypto/sha3"

	"github.com/hnrm110901-cell/zhilian-os-sub006/internal/domain/entity"
)

// Seal calcula el sello de integridad de un registro. Cubre solo los campos
// inmutables: status y rollback_id quedan fuera porque el rollback los
// transiciona legalmente.
func Seal(rec *entity.ExecutionRecord) (string, error) {
	if rec == nil {
		return "", fmt.Errorf("audit: registro nil")
	}
	xmlBytes, err := canonicalForm(rec)
	if err != nil {
		return "", err
	}
	sum := sha3.Sum256(xmlBytes)
	return hex.EncodeToString(sum[:]), nil
}

// Verify recalcula el sello y lo compara con el almacenado.
func Verify(rec *entity.ExecutionRecord) (bool, error) {
	if rec == nil {
		return false, fmt.Errorf("audit: registro nil")
	}
	want, err := Seal(rec)
	if err != nil {
		return false, err
	}
	return want == rec.Seal, nil
}

// canonicalForm serializa los campos inmutables como XML y lo canonicaliza
// con C14N, igual que el digest de una firma XML-DSig: independiente de
// espacios, orden de atributos y detalles de serialización.
func canonicalForm(rec *entity.ExecutionRecord) ([]byte, error) {
	doc := etree.NewDocument()
	root := doc.CreateElement("execution-record")
	root.CreateAttr("id", rec.ExecutionID)

	root.CreateElement("command-type").SetText(rec.CommandType)

	actor := root.CreateElement("actor")
	actor.CreateElement("user-id").SetText(rec.ActorID)
	actor.CreateElement("role").SetText(rec.ActorRole)
	actor.CreateElement("store-id").SetText(rec.StoreID)
	actor.CreateElement("brand-id").SetText(rec.BrandID)

	root.CreateElement("level").SetText(string(rec.Level))
	if rec.Amount != nil {
		// escala fija de 4 decimales, igual que la columna NUMERIC(18,4):
		// 999 y 999.0000 son el mismo monto y deben sellar igual
		root.CreateElement("amount").SetText(rec.Amount.StringFixed(4))
	}
	if rec.Reason != "" {
		root.CreateElement("reason").SetText(rec.Reason)
	}

	// json.Marshal ordena las claves del map: representación estable del snapshot
	snapshot, err := json.Marshal(rec.PayloadSnapshot)
	if err != nil {
		return nil, fmt.Errorf("audit: serializar snapshot: %w", err)
	}
	root.CreateElement("payload-snapshot").SetText(string(snapshot))

	root.CreateElement("executed-at").SetText(rec.ExecutedAt.UTC().Format(time.RFC3339Nano))
	root.CreateElement("created-at").SetText(rec.CreatedAt.UTC().Format(time.RFC3339Nano))

	raw, err := doc.WriteToBytes()
	if err != nil {
		return nil, fmt.Errorf("audit: serializar XML: %w", err)
	}

	dec := xml.NewDecoder(bytes.NewReader(raw))
	dec.Entity = map[string]string{}
	canonical, err := c14n.Canonicalize(dec)
	if err != nil {
		return nil, fmt.Errorf("audit: canonicalizar: %w", err)
	}
	return canonical, nil
}
