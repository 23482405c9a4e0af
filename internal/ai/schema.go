package ai

// swapsSchemaDescription describes the ClickHouse schema used for NL→SQL prompting.
//
// Keeping it in sync with the actual ClickHouse table definition in init.sql.
const swapsSchemaDescription = `
Database: settlement
Table: swaps

Columns:
  - trader        String    -- Trader identity (base58 public key)
  - pool          String    -- Derived pool address (base58)
  - token_a_mint  String    -- Mint of the oracle-priced token (base58)
  - token_b_mint  String    -- Mint of the USD-pegged counterpart (base58)
  - amount_in     UInt64    -- Raw input amount (token base units)
  - amount_out    UInt64    -- Raw output amount (token base units)
  - input_is_a    Bool      -- true when the trader sold token A for token B
  - oracle_price  Int64     -- Oracle price at settlement, fixed point with 8 decimals
  - swap_fee_bps  UInt16    -- Swap fee in basis points (parts per 10000)
  - pool_type     String    -- "internal" or "external"
  - timestamp     DateTime  -- Settlement time (UTC)

Notes:
  - oracle_price / 100000000.0 gives the human-readable USD price of token A.
  - For volume calculations you can SUM(amount_in) or SUM(amount_out) depending on the unit you care about.
  - Time filters should use timestamp, e.g. timestamp >= now() - INTERVAL 24 HOUR.
`
